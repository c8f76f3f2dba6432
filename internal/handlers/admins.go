package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/services"
	pkghttp "github.com/kdblock/panel/pkg/http"
)

// AdminServiceInterface defines the interface for admin account management
type AdminServiceInterface interface {
	List(ctx context.Context) ([]*services.AdminResponse, error)
	Create(ctx context.Context, creator *models.Admin, req *services.CreateAdminRequest) (*services.AdminResponse, error)
	Update(ctx context.Context, actor *models.Admin, id string, req *services.UpdateAdminRequest) (*services.AdminResponse, error)
	ChangePassword(ctx context.Context, actor *models.Admin, id, newPassword string) error
	Delete(ctx context.Context, actor *models.Admin, id string) error
}

// AdminHandler handles admin account management requests
type AdminHandler struct {
	service AdminServiceInterface
}

func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req services.CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this userid already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	var req services.UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor, id, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			writeAdminError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		writeAdminError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Admin account not found")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "The main admin account cannot be modified this way")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
