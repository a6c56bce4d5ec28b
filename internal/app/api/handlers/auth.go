package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/auth"
	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// @Summary      Login
// @Description  Verifies staff credentials and issues a session token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.loginRequest true "Credentials"
// @Success      200  {object}  response.APIResponse[loginResponse]
// @Router       /api/v1/auth/login [post]
func ApiLogin(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		token, user, err := authSvc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, response.Msg(response.APIResponseCodeUnauthorized, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(loginResponse{Token: token, User: user}))
	}
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// @Summary      Change password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.changePasswordRequest true "New password"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/auth/change_password [post]
func ApiChangePassword(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		username := c.GetString("username")
		if err := authSvc.ChangePassword(c.Request.Context(), username, req.NewPassword); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT("password changed"))
	}
}

// RegisterAuthRoutes wires the public login route; change_password belongs
// on the protected group.
func RegisterAuthRoutes(pub gin.IRouter, protected gin.IRouter, authSvc *auth.Service) {
	pub.POST("/auth/login", ApiLogin(authSvc))
	protected.POST("/auth/change_password", ApiChangePassword(authSvc))
}
