package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/flexfit/gymdesk/internal/app/service/enrollment"
	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
)

// @Summary      List members
// @Tags         Members
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.Member]
// @Router       /api/v1/members [get]
func ApiListMembers(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := st.ListMembers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(members))
	}
}

// @Summary      Enroll member
// @Description  Creates a member with an Active membership and an Unpaid payment for the first term.
// @Tags         Members
// @Accept       json
// @Produce      json
// @Param        request body enrollment.EnrollInput true "Enrollment"
// @Success      200  {object}  response.APIResponse[enrollment.EnrollResult]
// @Router       /api/v1/members [post]
func ApiEnrollMember(svc *enrollment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enrollment.EnrollInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.Enroll(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, enrollment.ErrValidation) {
				c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type updateMemberRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Contact   string `json:"contact"`
}

// @Summary      Update member details
// @Tags         Members
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "Member ID"
// @Param        request body handlers.updateMemberRequest true "Identity fields"
// @Success      200  {object}  response.APIResponse[models.Member]
// @Router       /api/v1/members/{id} [put]
func ApiUpdateMember(svc *enrollment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		member, err := svc.UpdateMember(c.Request.Context(), c.Param("id"), req.FirstName, req.LastName, req.Contact)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(member))
	}
}

// @Summary      Delete member
// @Tags         Members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/members/{id} [delete]
func ApiDeleteMember(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT("deleted"))
	}
}

type memberProfile struct {
	Member      *models.Member       `json:"member"`
	Memberships []*models.Membership `json:"memberships"`
	Payments    []*models.Payment    `json:"payments"`
}

// @Summary      Member profile
// @Description  Member identity with full membership and payment history.
// @Tags         Members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200  {object}  response.APIResponse[memberProfile]
// @Router       /api/v1/members/{id}/profile [get]
func ApiMemberProfile(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		member, err := st.GetMember(ctx, id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		memberships, err := st.ListMembershipsByMember(ctx, id)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		payments, err := st.ListPayments(ctx)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(memberProfile{
			Member:      member,
			Memberships: memberships,
			Payments: lo.Filter(payments, func(p *models.Payment, _ int) bool {
				return p.MemberID == id
			}),
		}))
	}
}

type renewRequest struct {
	PlanID    string  `json:"plan_id" binding:"required"`
	TrainerID *string `json:"trainer_id"`
}

// @Summary      Renew membership
// @Description  Starts a fresh membership term for an existing member.
// @Tags         Members
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Member ID"
// @Param        request body handlers.renewRequest true "Renewal"
// @Success      200  {object}  response.APIResponse[enrollment.EnrollResult]
// @Router       /api/v1/members/{id}/renew [post]
func ApiRenewMembership(svc *enrollment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req renewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.Renew(c.Request.Context(), c.Param("id"), req.PlanID, req.TrainerID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// writeServiceError maps common service failures onto the response envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, enrollment.ErrValidation):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
	}
}

func RegisterMemberRoutes(r gin.IRouter, svc *enrollment.Service, st store.Store) {
	r.GET("/members", ApiListMembers(st))
	r.POST("/members", ApiEnrollMember(svc))
	r.PUT("/members/:id", ApiUpdateMember(svc))
	r.DELETE("/members/:id", ApiDeleteMember(st))
	r.GET("/members/:id/profile", ApiMemberProfile(st))
	r.POST("/members/:id/renew", ApiRenewMembership(svc))
}
