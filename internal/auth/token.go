package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kdblock/panel/internal/models"
)

// TokenManager handles JWT session token generation and validation
type TokenManager struct {
	secret        string
	sessionExpiry time.Duration
}

func NewTokenManager(secret string, sessionExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        secret,
		sessionExpiry: sessionExpiry,
	}
}

// GenerateSessionToken creates a signed session token for an authenticated admin.
func (tm *TokenManager) GenerateSessionToken(admin *models.Admin) (*models.Session, error) {
	now := time.Now()
	expiresAt := now.Add(tm.sessionExpiry)

	claims := &models.TokenClaims{
		AdminID: admin.ID,
		UserID:  admin.UserID,
		Role:    admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.Session{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies a token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.AdminID == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return claims, nil
}
