package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/middleware"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// sessionFromContext writes a 401 and returns false when the request carries no session.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return claims.Session(), true
}

func listMeta(count int) map[string]interface{} {
	return map[string]interface{}{"total": count}
}
