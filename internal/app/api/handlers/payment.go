package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/billing"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
)

// @Summary      List payments
// @Description  Unpaid first by due date, then paid by payment date descending.
// @Tags         Payments
// @Produce      json
// @Param        unpaid_only query bool false "Only outstanding payments"
// @Success      200  {object}  response.APIResponse[[]models.Payment]
// @Router       /api/v1/payments [get]
func ApiListPayments(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := svc.List(c.Request.Context(), c.Query("unpaid_only") == "true")
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(payments))
	}
}

func writeBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, billing.ErrAlreadyPaid),
		errors.Is(err, billing.ErrAlreadyUnpaid),
		errors.Is(err, billing.ErrNoContact):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Mark payment paid
// @Tags         Payments
// @Produce      json
// @Param        id path string true "Payment ID"
// @Success      200  {object}  response.APIResponse[models.Payment]
// @Router       /api/v1/payments/{id}/mark_paid [post]
func ApiMarkPaid(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.MarkPaid(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeBillingError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Mark payment unpaid
// @Tags         Payments
// @Produce      json
// @Param        id path string true "Payment ID"
// @Success      200  {object}  response.APIResponse[models.Payment]
// @Router       /api/v1/payments/{id}/mark_unpaid [post]
func ApiMarkUnpaid(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.MarkUnpaid(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeBillingError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

type editAmountRequest struct {
	AmountDue float64 `json:"amount_due" binding:"required"`
}

// @Summary      Edit amount due
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Payment ID"
// @Param        request body handlers.editAmountRequest true "New amount"
// @Success      200  {object}  response.APIResponse[models.Payment]
// @Router       /api/v1/payments/{id}/amount [put]
func ApiEditAmount(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req editAmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		p, err := svc.EditAmount(c.Request.Context(), c.Param("id"), req.AmountDue)
		if err != nil {
			writeBillingError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

type reminderLinkResponse struct {
	Link string `json:"link"`
}

// @Summary      WhatsApp reminder link
// @Description  Builds a chat link carrying the payment reminder message.
// @Tags         Payments
// @Produce      json
// @Param        id path string true "Payment ID"
// @Success      200  {object}  response.APIResponse[reminderLinkResponse]
// @Router       /api/v1/payments/{id}/reminder_link [get]
func ApiReminderLink(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, err := svc.ReminderLink(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeBillingError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(reminderLinkResponse{Link: link}))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("/payments", ApiListPayments(svc))
	r.POST("/payments/:id/mark_paid", ApiMarkPaid(svc))
	r.POST("/payments/:id/mark_unpaid", ApiMarkUnpaid(svc))
	r.PUT("/payments/:id/amount", ApiEditAmount(svc))
	r.GET("/payments/:id/reminder_link", ApiReminderLink(svc))
}
