package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kdblock/panel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminFetcher struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Admin, error)
}

func (f *fakeAdminFetcher) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func activeFetcher(admin *models.Admin) *fakeAdminFetcher {
	return &fakeAdminFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return admin, nil
		},
	}
}

func okHandler(captured **models.Admin) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = GetAdminFromContext(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_BearerHeader(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)
	admin := testAdmin()

	session, err := tm.GenerateSessionToken(admin)
	require.NoError(t, err)

	var seen *models.Admin
	handler := Middleware(tm, activeFetcher(admin))(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin-1", seen.ID)
}

func TestMiddleware_SessionCookieFallback(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)
	admin := testAdmin()

	session, err := tm.GenerateSessionToken(admin)
	require.NoError(t, err)

	handler := Middleware(tm, activeFetcher(admin))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_MissingCredentials(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)

	handler := Middleware(tm, &fakeAdminFetcher{})(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_DeletedAccount(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)
	admin := testAdmin()

	session, err := tm.GenerateSessionToken(admin)
	require.NoError(t, err)

	// A valid token for an account that no longer exists must not pass
	fetcher := &fakeAdminFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := Middleware(tm, fetcher)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_DeactivatedAccount(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)
	admin := testAdmin()
	admin.IsActive = false

	session, err := tm.GenerateSessionToken(admin)
	require.NoError(t, err)

	handler := Middleware(tm, activeFetcher(admin))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCapability(t *testing.T) {
	tm := NewTokenManager("test-secret-key-long-enough", time.Hour)

	// Sub-admin with photo access only
	admin := &models.Admin{
		ID:          "sub-1",
		UserID:      "clerk2",
		Role:        models.RoleSubAdmin,
		PhotoAccess: true,
		IsActive:    true,
	}

	session, err := tm.GenerateSessionToken(admin)
	require.NoError(t, err)

	photos := func(c models.Capabilities) bool { return c.ManagePhotos }
	notices := func(c models.Capabilities) bool { return c.ManageNotifications }

	tests := []struct {
		name     string
		gate     func(models.Capabilities) bool
		wantCode int
	}{
		{"granted capability", photos, http.StatusOK},
		{"missing capability", notices, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Middleware(tm, activeFetcher(admin))(
				RequireCapability(tt.gate)(okHandler(nil)),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireCapability_WithoutMiddleware(t *testing.T) {
	handler := RequireCapability(func(c models.Capabilities) bool { return true })(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "token-value", time.Now().Add(time.Hour), CookieConfig{Secure: true})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Positive(t, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	token, err := GetSessionCookie(req)
	require.NoError(t, err)
	assert.Equal(t, "token-value", token)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, CookieConfig{})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
