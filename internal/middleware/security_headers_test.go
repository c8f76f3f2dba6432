package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveWithHeaders(t *testing.T, env string, proto string) *httptest.ResponseRecorder {
	t.Helper()

	handler := SecurityHeaders(SecurityHeadersConfig{Env: env})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if proto != "" {
		req.Header.Set("X-Forwarded-Proto", proto)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	rec := serveWithHeaders(t, "development", "")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
}

func TestSecurityHeaders_ProductionCSP(t *testing.T) {
	rec := serveWithHeaders(t, "production", "")

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.False(t, strings.Contains(csp, "unsafe-eval"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	// HSTS only on HTTPS in production
	assert.Empty(t, serveWithHeaders(t, "production", "").Header().Get("Strict-Transport-Security"))
	assert.NotEmpty(t, serveWithHeaders(t, "production", "https").Header().Get("Strict-Transport-Security"))
	assert.Empty(t, serveWithHeaders(t, "development", "https").Header().Get("Strict-Transport-Security"))
}
