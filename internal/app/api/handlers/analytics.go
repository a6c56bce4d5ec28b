package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/flexfit/gymdesk/internal/app/service/analytics"
	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
	"github.com/flexfit/gymdesk/pkg/types"
)

// intQuery reads an integer query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

type churnResponse struct {
	ChurnRate     float64 `json:"churn_rate"`
	RetentionRate float64 `json:"retention_rate"`
}

// @Summary      Churn and retention
// @Tags         Analytics
// @Produce      json
// @Param        period_months query int false "Window length in months" default(1)
// @Param        month_offset  query int false "Months back from today"  default(0)
// @Success      200  {object}  response.APIResponse[churnResponse]
// @Router       /api/v1/analytics/churn [get]
func ApiChurn(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := intQuery(c, "period_months", 1)
		offset := 0
		if raw := c.Query("month_offset"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
				offset = v
			}
		}

		churn, err := svc.ChurnRate(c.Request.Context(), period, offset)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		retention, err := svc.RetentionRate(c.Request.Context(), period, offset)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(churnResponse{ChurnRate: churn, RetentionRate: retention}))
	}
}

// @Summary      Retention trend
// @Tags         Analytics
// @Produce      json
// @Param        months query int false "Trend length" default(6)
// @Success      200  {object}  response.APIResponse[analytics.RetentionTrend]
// @Router       /api/v1/analytics/retention_trend [get]
func ApiRetentionTrend(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		trend, err := svc.RetentionTrend(c.Request.Context(), intQuery(c, "months", 6))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(trend))
	}
}

// @Summary      At-risk members
// @Description  Active memberships expiring within the lookahead window, most urgent first.
// @Tags         Analytics
// @Produce      json
// @Param        days query int false "Lookahead days" default(30)
// @Success      200  {object}  response.APIResponse[[]analytics.AtRiskMember]
// @Router       /api/v1/analytics/at_risk [get]
func ApiAtRiskMembers(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		atRisk, err := svc.AtRiskMembers(c.Request.Context(), intQuery(c, "days", 30))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(atRisk))
	}
}

// @Summary      Revenue forecast
// @Tags         Analytics
// @Produce      json
// @Param        months_ahead query int false "Forecast horizon" default(6)
// @Success      200  {object}  response.APIResponse[analytics.RevenueForecast]
// @Router       /api/v1/analytics/revenue_forecast [get]
func ApiRevenueForecast(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		forecast, err := svc.PredictRevenue(c.Request.Context(), intQuery(c, "months_ahead", 6))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(forecast))
	}
}

// @Summary      Revenue history
// @Tags         Analytics
// @Produce      json
// @Param        months query int false "History length" default(12)
// @Success      200  {object}  response.APIResponse[analytics.RevenueTrend]
// @Router       /api/v1/analytics/revenue_history [get]
func ApiRevenueHistory(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		trend, err := svc.HistoricalRevenueTrend(c.Request.Context(), intQuery(c, "months", 12))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(trend))
	}
}

// @Summary      Expected renewals
// @Tags         Analytics
// @Produce      json
// @Param        days_ahead query int false "Lookahead days" default(30)
// @Success      200  {object}  response.APIResponse[analytics.RenewalForecast]
// @Router       /api/v1/analytics/expected_renewals [get]
func ApiExpectedRenewals(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		forecast, err := svc.ExpectedRenewals(c.Request.Context(), intQuery(c, "days_ahead", 30))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(forecast))
	}
}

// @Summary      Forecast confidence
// @Tags         Analytics
// @Produce      json
// @Success      200  {object}  response.APIResponse[analytics.Confidence]
// @Router       /api/v1/analytics/confidence [get]
func ApiConfidence(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		confidence, err := svc.ConfidenceInterval(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(confidence))
	}
}

type clvResponse struct {
	LifetimeValue float64 `json:"lifetime_value"`
}

// @Summary      Member lifetime value
// @Tags         Analytics
// @Produce      json
// @Success      200  {object}  response.APIResponse[clvResponse]
// @Router       /api/v1/analytics/clv [get]
func ApiLifetimeValue(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		clv, err := svc.MemberLifetimeValue(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(clvResponse{LifetimeValue: clv}))
	}
}

type dashboardSummary struct {
	TotalMembers      int                  `json:"total_members"`
	ActiveMemberships int                  `json:"active_memberships"`
	FrozenMemberships int                  `json:"frozen_memberships"`
	UnpaidDues        float64              `json:"unpaid_dues"`
	ChurnRate         float64              `json:"churn_rate"`
	RetentionRate     float64              `json:"retention_rate"`
	AtRiskCount       int                  `json:"at_risk_count"`
	Confidence        analytics.Confidence `json:"confidence"`
}

// @Summary      Dashboard summary
// @Description  The headline numbers shown on the desk dashboard.
// @Tags         Analytics
// @Produce      json
// @Success      200  {object}  response.APIResponse[dashboardSummary]
// @Router       /api/v1/analytics/dashboard [get]
func ApiDashboard(svc *analytics.Service, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		members, err := st.ListMembers(ctx)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		memberships, err := st.ListMemberships(ctx)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		payments, err := st.ListPayments(ctx)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		churn, err := svc.ChurnRate(ctx, 1, 0)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		retention, err := svc.RetentionRate(ctx, 1, 0)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		atRisk, err := svc.AtRiskMembers(ctx, 30)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		confidence, err := svc.ConfidenceInterval(ctx)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(dashboardSummary{
			TotalMembers: len(members),
			ActiveMemberships: lo.CountBy(memberships, func(m *models.Membership) bool {
				return m.Status == types.MembershipStatusActive
			}),
			FrozenMemberships: lo.CountBy(memberships, func(m *models.Membership) bool {
				return m.Status == types.MembershipStatusFrozen
			}),
			UnpaidDues: lo.SumBy(payments, func(p *models.Payment) float64 {
				if p.Status == types.PaymentStatusUnpaid {
					return p.AmountDue
				}
				return 0
			}),
			ChurnRate:     churn,
			RetentionRate: retention,
			AtRiskCount:   len(atRisk),
			Confidence:    confidence,
		}))
	}
}

func RegisterAnalyticsRoutes(r gin.IRouter, svc *analytics.Service, st store.Store) {
	r.GET("/analytics/dashboard", ApiDashboard(svc, st))
	r.GET("/analytics/churn", ApiChurn(svc))
	r.GET("/analytics/retention_trend", ApiRetentionTrend(svc))
	r.GET("/analytics/at_risk", ApiAtRiskMembers(svc))
	r.GET("/analytics/revenue_forecast", ApiRevenueForecast(svc))
	r.GET("/analytics/revenue_history", ApiRevenueHistory(svc))
	r.GET("/analytics/expected_renewals", ApiExpectedRenewals(svc))
	r.GET("/analytics/confidence", ApiConfidence(svc))
	r.GET("/analytics/clv", ApiLifetimeValue(svc))
}
