package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
)

type authUserRepository interface {
	FindBySicil(ctx context.Context, sicil string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthConfig defines configuration for token issuance.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiration <= 0 {
		config.Expiration = 10 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, metrics: metrics, config: config, now: time.Now}
}

// Login authenticates a user by sicil and password. Unknown users, deleted users and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "sicil and sifre are required")
	}

	user, err := s.repo.FindBySicil(ctx, req.Sicil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Sifre)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create token")
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.Strings("roles", user.RoleNames()))

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		ExpiresAt: expiresAt,
		User: models.UserInfo{
			ID:    user.ID,
			Sicil: user.Sicil,
			Name:  user.Name,
			Role:  user.PrimaryRole(),
			Roles: user.RoleNames(),
		},
	}, nil
}

// ValidateToken parses and validates a session token and checks that its user still
// exists. Every token failure maps to INVALID_TOKEN; the cause is kept so callers can
// detect jwt.ErrTokenExpired.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "invalid token claims")
	}

	if _, err := s.repo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("token of removed user rejected", zap.Int64("user_id", claims.UserID))
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "session user no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load session user")
	}
	return claims, nil
}

// Me describes the session carried by claims.
func (s *AuthService) Me(claims *models.JWTClaims) models.UserInfo {
	info := models.UserInfo{
		ID:    claims.UserID,
		Sicil: claims.Sicil,
		Name:  claims.Name,
		Role:  claims.Role,
		Roles: claims.Roles,
	}
	if info.Roles == nil {
		info.Roles = []string{}
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Unix()
		info.TokenExp = &exp
	}
	return info
}

func (s *AuthService) generateToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Sicil:  user.Sicil,
		Role:   user.PrimaryRole(),
		Roles:  user.RoleNames(),
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
