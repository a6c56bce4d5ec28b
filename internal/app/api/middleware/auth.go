package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/auth"
	"github.com/flexfit/gymdesk/pkg/response"
)

// AuthMiddleware guards a route group with JWT Bearer tokens issued by the
// auth service. The verified username is attached to both gin.Context and
// the request context so request-scoped loggers pick it up.
func AuthMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Msg(response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := authSvc.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Msg(response.APIResponseCodeUnauthorized, "invalid or expired token"))
			return
		}

		c.Set("username", claims.Username)
		c.Set("role", string(claims.Role))
		ctx := context.WithValue(c.Request.Context(), "username", claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
