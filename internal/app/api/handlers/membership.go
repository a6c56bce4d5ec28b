package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/enrollment"
	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/response"
	"github.com/flexfit/gymdesk/pkg/types"
)

// writeLifecycleResult maps engine outcomes onto the response envelope.
// Failures are engine results, not transport errors, so they ride the 200
// with an app-level code like the rest of the API.
func writeLifecycleResult(c *gin.Context, res lifecycle.Result) {
	switch res.Outcome {
	case lifecycle.OutcomeOK, lifecycle.OutcomeCorrected:
		c.JSON(http.StatusOK, response.OKT(res))
	case lifecycle.OutcomeNotFound:
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeNotFound, res.Message))
	default:
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, res.Message))
	}
}

type freezeRequest struct {
	FreezeStart string `json:"freeze_start" binding:"required"`
	FreezeEnd   string `json:"freeze_end" binding:"required"`
	Reason      string `json:"reason"`
}

// @Summary      Freeze membership
// @Description  Records a freeze window and extends the end date by its length.
// @Tags         Memberships
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Membership ID"
// @Param        request body handlers.freezeRequest true "Freeze window"
// @Success      200  {object}  response.APIResponse[lifecycle.Result]
// @Router       /api/v1/memberships/{id}/freeze [post]
func ApiFreezeMembership(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req freezeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		start, err := dates.ParseDate(req.FreezeStart)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		end, err := dates.ParseDate(req.FreezeEnd)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.AddFreeze(c.Request.Context(), c.Param("id"), start, end, req.Reason, c.GetString("username"))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		writeLifecycleResult(c, res)
	}
}

// @Summary      Unfreeze membership
// @Description  Ends the active freeze early and pulls the end date back by the unused days.
// @Tags         Memberships
// @Produce      json
// @Param        id path string true "Membership ID"
// @Success      200  {object}  response.APIResponse[lifecycle.Result]
// @Router       /api/v1/memberships/{id}/unfreeze [post]
func ApiUnfreezeMembership(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Unfreeze(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		writeLifecycleResult(c, res)
	}
}

type freezeEligibility struct {
	Eligible bool   `json:"eligible"`
	Message  string `json:"message"`
}

// @Summary      Freeze eligibility
// @Tags         Memberships
// @Produce      json
// @Param        id path string true "Membership ID"
// @Success      200  {object}  response.APIResponse[freezeEligibility]
// @Router       /api/v1/memberships/{id}/freeze_eligibility [get]
func ApiFreezeEligibility(svc *lifecycle.Service, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := st.GetMembership(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		eligible, msg := svc.CanFreeze(m)
		c.JSON(http.StatusOK, response.OKT(freezeEligibility{Eligible: eligible, Message: msg}))
	}
}

type sweepResponse struct {
	Changed int `json:"changed"`
}

// @Summary      Run status sweep
// @Description  Reconciles Frozen/Active/Expired statuses against today's date.
// @Tags         Memberships
// @Produce      json
// @Success      200  {object}  response.APIResponse[sweepResponse]
// @Router       /api/v1/memberships/sweep [post]
func ApiSweepStatuses(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := svc.UpdateMembershipStatuses(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sweepResponse{Changed: changed}))
	}
}

type changePlanRequest struct {
	PlanID    string  `json:"plan_id"`
	TrainerID *string `json:"trainer_id"`
}

// @Summary      Change plan or trainer
// @Description  Swaps the plan and/or trainer; an actual change mints a new Unpaid payment.
// @Tags         Memberships
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Membership ID"
// @Param        request body handlers.changePlanRequest true "New plan/trainer"
// @Success      200  {object}  response.APIResponse[models.Payment]
// @Router       /api/v1/memberships/{id}/plan [put]
func ApiChangePlanTrainer(svc *enrollment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		payment, err := svc.ChangePlanTrainer(c.Request.Context(), c.Param("id"), req.PlanID, req.TrainerID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(payment))
	}
}

type changeStatusRequest struct {
	Status       types.MembershipStatus `json:"status" binding:"required"`
	FreezeMonths int                    `json:"freeze_months"`
	Note         string                 `json:"note"`
}

// @Summary      Change membership status
// @Description  Manual status edit with audit trail and billing side effects.
// @Tags         Memberships
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Membership ID"
// @Param        request body handlers.changeStatusRequest true "New status"
// @Success      200  {object}  response.APIResponse[enrollment.StatusChangeResult]
// @Router       /api/v1/memberships/{id}/status [put]
func ApiChangeStatus(svc *enrollment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.ChangeStatus(c.Request.Context(), c.Param("id"),
			req.Status, req.FreezeMonths, req.Note, c.GetString("username"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterMembershipRoutes(r gin.IRouter, lc *lifecycle.Service, enr *enrollment.Service, st store.Store) {
	r.POST("/memberships/:id/freeze", ApiFreezeMembership(lc))
	r.POST("/memberships/:id/unfreeze", ApiUnfreezeMembership(lc))
	r.GET("/memberships/:id/freeze_eligibility", ApiFreezeEligibility(lc, st))
	r.POST("/memberships/sweep", ApiSweepStatuses(lc))
	r.PUT("/memberships/:id/plan", ApiChangePlanTrainer(enr))
	r.PUT("/memberships/:id/status", ApiChangeStatus(enr))
}
