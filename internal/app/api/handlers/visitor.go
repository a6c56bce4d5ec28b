package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/visitor"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
)

// @Summary      List visitors
// @Tags         Visitors
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.Visitor]
// @Router       /api/v1/visitors [get]
func ApiListVisitors(svc *visitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitors, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(visitors))
	}
}

// @Summary      Record visitor
// @Tags         Visitors
// @Accept       json
// @Produce      json
// @Param        request body visitor.Input true "Visitor lead"
// @Success      200  {object}  response.APIResponse[models.Visitor]
// @Router       /api/v1/visitors [post]
func ApiCreateVisitor(svc *visitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req visitor.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		v, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(v))
	}
}

// @Summary      Update visitor
// @Tags         Visitors
// @Accept       json
// @Produce      json
// @Param        id      path string        true "Visitor ID"
// @Param        request body visitor.Input true "Visitor lead"
// @Success      200  {object}  response.APIResponse[models.Visitor]
// @Router       /api/v1/visitors/{id} [put]
func ApiUpdateVisitor(svc *visitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req visitor.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		v, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(v))
	}
}

// @Summary      Delete visitor
// @Tags         Visitors
// @Produce      json
// @Param        id path string true "Visitor ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/visitors/{id} [delete]
func ApiDeleteVisitor(svc *visitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT("deleted"))
	}
}

func RegisterVisitorRoutes(r gin.IRouter, svc *visitor.Service) {
	r.GET("/visitors", ApiListVisitors(svc))
	r.POST("/visitors", ApiCreateVisitor(svc))
	r.PUT("/visitors/:id", ApiUpdateVisitor(svc))
	r.DELETE("/visitors/:id", ApiDeleteVisitor(svc))
}
