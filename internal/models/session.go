package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a minted authentication token with its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims are the JWT claims carried by an admin session token.
type TokenClaims struct {
	AdminID string `json:"admin_id"`
	UserID  string `json:"userid"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
