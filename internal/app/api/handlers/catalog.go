package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
)

// @Summary      List plans
// @Tags         Catalog
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.Plan]
// @Router       /api/v1/plans [get]
func ApiListPlans(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := st.ListPlans(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(plans))
	}
}

// @Summary      List trainers
// @Tags         Catalog
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.Trainer]
// @Router       /api/v1/trainers [get]
func ApiListTrainers(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainers, err := st.ListTrainers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(trainers))
	}
}

func RegisterCatalogRoutes(r gin.IRouter, st store.Store) {
	r.GET("/plans", ApiListPlans(st))
	r.GET("/trainers", ApiListTrainers(st))
}
