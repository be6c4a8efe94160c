package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
	"github.com/noah-isme/duyuru-api/pkg/logger"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
}

// JWTOption customises the JWT middleware.
type JWTOption func(*jwtOptions)

type jwtOptions struct {
	onExpired func(c *gin.Context, err error)
}

// OnExpired registers a hook invoked when a token is rejected only because it expired.
// The request is still rejected with INVALID_TOKEN.
func OnExpired(fn func(c *gin.Context, err error)) JWTOption {
	return func(o *jwtOptions) {
		o.onExpired = fn
	}
}

// JWT protects routes by requiring a valid session token. A missing token is
// 401 UNAUTHORIZED; an invalid or expired one is 403 INVALID_TOKEN.
func JWT(validator TokenValidator, opts ...JWTOption) gin.HandlerFunc {
	options := jwtOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if options.onExpired != nil && errors.Is(err, jwt.ErrTokenExpired) {
				options.onExpired(c, err)
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(logger.UserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
