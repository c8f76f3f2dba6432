package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/services"
	pkghttp "github.com/kdblock/panel/pkg/http"
)

// PhotoServiceInterface defines the interface for gallery and slideshow management
type PhotoServiceInterface interface {
	ListGallery(ctx context.Context, category string) ([]*models.GalleryImage, error)
	UploadGalleryImage(ctx context.Context, uploader *models.Admin, req *services.GalleryUploadRequest, upload *services.ImageUpload) (*models.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, actor *models.Admin, id string) error
	ListSlideshow(ctx context.Context) ([]*models.SlideshowImage, error)
	UploadSlide(ctx context.Context, uploader *models.Admin, req *services.SlideshowUploadRequest, upload *services.ImageUpload) (*models.SlideshowImage, error)
	UpdateSlide(ctx context.Context, actor *models.Admin, id string, req *services.UpdateSlideRequest) (*models.SlideshowImage, error)
	DeleteSlide(ctx context.Context, actor *models.Admin, id string) error
}

// PhotoHandler handles gallery and slideshow management requests
type PhotoHandler struct {
	service      PhotoServiceInterface
	maxImageSize int64
}

func NewPhotoHandler(service PhotoServiceInterface, maxImageSize int64) *PhotoHandler {
	return &PhotoHandler{
		service:      service,
		maxImageSize: maxImageSize,
	}
}

// readImageUpload pulls the "image" part out of a multipart form.
func (h *PhotoHandler) readImageUpload(r *http.Request) (*services.ImageUpload, error) {
	if err := r.ParseMultipartForm(h.maxImageSize + 1<<20); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, errors.New("image file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		return nil, errors.New("failed to read image upload")
	}

	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *PhotoHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListGallery(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, images)
}

func (h *PhotoHandler) UploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	upload, err := h.readImageUpload(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req := &services.GalleryUploadRequest{
		AltText:  r.FormValue("alt_text"),
		Category: r.FormValue("category"),
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.UploadGalleryImage(r.Context(), actor, req, upload)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

func (h *PhotoHandler) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.DeleteGalleryImage(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Gallery image not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) ListSlideshow(w http.ResponseWriter, r *http.Request) {
	slides, err := h.service.ListSlideshow(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, slides)
}

func (h *PhotoHandler) UploadSlide(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	upload, err := h.readImageUpload(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	isActive, _ := strconv.ParseBool(r.FormValue("is_active"))
	req := &services.SlideshowUploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		IsActive:    isActive,
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.UploadSlide(r.Context(), actor, req, upload)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

func (h *PhotoHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req services.UpdateSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateSlide(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Slide not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, updated)
}

func (h *PhotoHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetAdminFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.DeleteSlide(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Slide not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
