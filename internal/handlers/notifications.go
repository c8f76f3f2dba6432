package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/services"
	pkghttp "github.com/kdblock/panel/pkg/http"
)

// NotificationServiceInterface defines the interface for notification management
type NotificationServiceInterface interface {
	List(ctx context.Context) ([]*services.NotificationResponse, error)
	Get(ctx context.Context, id string) (*services.NotificationResponse, error)
	Create(ctx context.Context, author *models.Admin, req *services.CreateNotificationRequest, attachment *services.Attachment) (*services.NotificationResponse, error)
	Update(ctx context.Context, actor *models.Admin, id string, req *services.UpdateNotificationRequest) (*services.NotificationResponse, error)
	Delete(ctx context.Context, actor *models.Admin, id string) error
}

// NotificationHandler handles notification management requests
type NotificationHandler struct {
	service           NotificationServiceInterface
	maxAttachmentSize int64
}

func NewNotificationHandler(service NotificationServiceInterface, maxAttachmentSize int64) *NotificationHandler {
	return &NotificationHandler{
		service:           service,
		maxAttachmentSize: maxAttachmentSize,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, n)
}

// Create accepts multipart form data so a notice and its attachment arrive
// in one request. The attachment part is optional.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	req, attachment, err := h.parseCreateRequest(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, svcErr := h.service.Create(r.Context(), actor, req, attachment)
	if svcErr != nil {
		if errors.Is(svcErr, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, svcErr.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

func (h *NotificationHandler) parseCreateRequest(r *http.Request) (*services.CreateNotificationRequest, *services.Attachment, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var req services.CreateNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &req, nil, nil
	}

	// Leave headroom above the attachment limit for the other form fields.
	if err := r.ParseMultipartForm(h.maxAttachmentSize + 1<<20); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	req := &services.CreateNotificationRequest{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		DynamicURL: r.FormValue("dynamic_url"),
		URLTitle:   r.FormValue("url_title"),
	}
	req.IsActive, _ = strconv.ParseBool(r.FormValue("is_active"))

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, nil
		}
		return nil, nil, errors.New("invalid file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxAttachmentSize+1))
	if err != nil {
		return nil, nil, errors.New("failed to read file upload")
	}

	attachment := &services.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return req, attachment, nil
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req services.UpdateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, updated)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
