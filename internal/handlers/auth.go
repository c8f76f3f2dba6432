package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/governor"
	"github.com/kdblock/panel/internal/models"
	pkghttp "github.com/kdblock/panel/pkg/http"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

// AuthHandler drives the login flow through the attempt governor and
// manages the session cookie.
type AuthHandler struct {
	gov          *governor.Governor
	cookieConfig auth.CookieConfig
	ipConfig     *pkghttp.IPConfig
	auditLogger  *pkglogger.AuditLogger
}

func NewAuthHandler(gov *governor.Governor, cookieConfig auth.CookieConfig, ipConfig *pkghttp.IPConfig, auditLogger *pkglogger.AuditLogger) *AuthHandler {
	return &AuthHandler{
		gov:          gov,
		cookieConfig: cookieConfig,
		ipConfig:     ipConfig,
		auditLogger:  auditLogger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	UserID          string `json:"userid" validate:"required,max=50"`
	Password        string `json:"password" validate:"required"`
	ChallengeAnswer string `json:"challenge_answer"`
}

// LoginStateResponse tells the login form what to render.
type LoginStateResponse struct {
	Mode              string `json:"mode"`
	Challenge         string `json:"challenge,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// LoginResponse is returned on successful authentication. The token rides
// in the body as well as the cookie so non-browser clients can use the
// Bearer scheme.
type LoginResponse struct {
	Admin     *AdminProfile `json:"admin"`
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
}

// AdminProfile is the authenticated account as shown to the client.
type AdminProfile struct {
	ID                 string `json:"id"`
	UserID             string `json:"userid"`
	Role               string `json:"role"`
	NotificationAccess bool   `json:"notification_access"`
	PhotoAccess        bool   `json:"photo_access"`
}

func toAdminProfile(admin *models.Admin) *AdminProfile {
	caps := admin.Capabilities()
	return &AdminProfile{
		ID:                 admin.ID,
		UserID:             admin.UserID,
		Role:               admin.Role,
		NotificationAccess: caps.ManageNotifications,
		PhotoAccess:        caps.ManagePhotos,
	}
}

// LoginState reports whether the next submission for the given login name
// needs a challenge or is locked out. The form calls this before rendering.
func (h *AuthHandler) LoginState(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("userid")
	if identifier == "" {
		pkghttp.WriteBadRequest(w, "userid query parameter is required")
		return
	}

	d := h.gov.Evaluate(r.Context(), identifier, time.Now())

	resp := LoginStateResponse{Mode: string(d.Mode)}
	if d.Challenge != nil {
		resp.Challenge = d.Challenge.Question
	}
	if d.RetryAfter > 0 {
		resp.RetryAfterSeconds = int(d.RetryAfter.Seconds())
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Login handles one login submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	res := h.gov.Submit(r.Context(), req.UserID, req.Password, req.ChallengeAnswer, time.Now())
	h.auditLoginOutcome(req.UserID, ipAddress, userAgent, res)

	switch res.Status {
	case governor.StatusSuccess:
		auth.SetSessionCookie(w, res.Session.Token, res.Session.ExpiresAt, h.cookieConfig)
		pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
			Admin:     toAdminProfile(res.Admin),
			Token:     res.Session.Token,
			ExpiresAt: res.Session.ExpiresAt.UTC().Format(time.RFC3339),
		})

	case governor.StatusLocked:
		w.Header().Set("Retry-After", formatSeconds(res.RetryAfter))
		pkghttp.WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Too many failed login attempts. Please try again later.")

	case governor.StatusChallengeFailed, governor.StatusInvalidCredentials:
		// Both rejections look identical except for the message; the next
		// form state rides along so the client can re-render immediately.
		message := "Authentication failed"
		if res.Status == governor.StatusChallengeFailed {
			message = "Challenge answer incorrect"
		}

		body := map[string]interface{}{
			"error":   "unauthorized",
			"message": message,
		}
		if res.Challenge != nil {
			body["challenge"] = res.Challenge.Question
		}
		if res.RetryAfter > 0 {
			body["retry_after_seconds"] = int(res.RetryAfter.Seconds())
		}
		pkghttp.WriteJSON(w, http.StatusUnauthorized, body)

	default:
		pkghttp.WriteServiceUnavailable(w, "Login is temporarily unavailable. Please try again.")
	}
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated admin's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetAdminFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toAdminProfile(admin))
}

// auditLoginOutcome records where each login submission came from. The
// credential check inside the service audits separately; this event carries
// the transport context (IP, user agent) that layer never sees.
func (h *AuthHandler) auditLoginOutcome(identifier, ipAddress, userAgent string, res governor.SubmitResult) {
	event := pkglogger.AuditEvent{
		EventType:  "login_" + string(res.Status),
		Identifier: identifier,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Success:    res.Status == governor.StatusSuccess,
	}
	if res.Admin != nil {
		event.AdminID = res.Admin.ID
	}
	if !event.Success {
		event.FailureReason = string(res.Status)
	}
	h.auditLogger.LogLoginAttempt(event)
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
