package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Sicil string `json:"sicil" validate:"required"`
	Sifre string `json:"sifre" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       int64    `json:"id"`
	Sicil    string   `json:"sicil"`
	Name     string   `json:"isim"`
	Role     string   `json:"yetki"`
	Roles    []string `json:"yetkiler"`
	TokenExp *int64   `json:"exp,omitempty"`
}

// JWTClaims represents the JWT payload for session tokens.
type JWTClaims struct {
	UserID int64    `json:"id"`
	Sicil  string   `json:"sicil"`
	Role   string   `json:"yetki"`
	Roles  []string `json:"yetkiler"`
	Name   string   `json:"isim"`
	jwt.RegisteredClaims
}

// Session is the explicit per-request identity handed to services.
type Session struct {
	UserID int64
	Sicil  string
	Name   string
	Roles  []string
}

// Session converts token claims into a Session without the primary role.
func (c *JWTClaims) Session() Session {
	if c == nil {
		return Session{}
	}
	return Session{UserID: c.UserID, Sicil: c.Sicil, Name: c.Name, Roles: c.Roles}
}
