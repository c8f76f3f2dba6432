package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kdblock/panel/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AdminContextKey is the key for storing the authenticated admin in context
	AdminContextKey contextKey = "admin"
	// CapabilitiesContextKey is the key for the admin's computed capabilities
	CapabilitiesContextKey contextKey = "capabilities"
)

// AdminFetcher loads the current admin record for a validated token.
type AdminFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

// Middleware validates the session token and injects the admin and their
// capabilities into the request context. The admin is re-read from the
// database on every request so deactivation and access-flag changes take
// effect immediately, not at token expiry.
func Middleware(tm *TokenManager, admins AdminFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			admin, err := admins.GetByID(r.Context(), claims.AdminID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					http.Error(w, "account no longer exists", http.StatusUnauthorized)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !admin.IsActive {
				http.Error(w, "account is deactivated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, admin)
			ctx = context.WithValue(ctx, CapabilitiesContextKey, admin.Capabilities())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability gates a route group on one capability flag. Must run
// after Middleware.
func RequireCapability(allowed func(models.Capabilities) bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caps, ok := r.Context().Value(CapabilitiesContextKey).(models.Capabilities)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !allowed(caps) {
				http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken prefers the Authorization header, then falls back to the
// session cookie set at login.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	token, err := GetSessionCookie(r)
	if err != nil {
		return ""
	}
	return token
}

// GetAdminFromContext extracts the authenticated admin from request context
func GetAdminFromContext(r *http.Request) *models.Admin {
	admin, ok := r.Context().Value(AdminContextKey).(*models.Admin)
	if !ok {
		return nil
	}
	return admin
}

// GetCapabilitiesFromContext extracts the capability set from request context
func GetCapabilitiesFromContext(r *http.Request) (models.Capabilities, bool) {
	caps, ok := r.Context().Value(CapabilitiesContextKey).(models.Capabilities)
	return caps, ok
}
