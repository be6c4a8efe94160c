package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/authz"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

// RequireRoles admits sessions holding at least one of the given roles. It must run after JWT.
func RequireRoles(roles ...string) gin.HandlerFunc {
	required := append([]string(nil), roles...)
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || !authz.Authorize(claims.Roles, required) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
