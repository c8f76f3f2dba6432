package handlers

import (
	"context"
	"net/http"

	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/services"
	pkghttp "github.com/kdblock/panel/pkg/http"
)

// PublicContentService defines the read-only operations the public site uses
type PublicContentService interface {
	ListActive(ctx context.Context) ([]*services.NotificationResponse, error)
}

// PublicPhotoService defines the read-only photo operations the public site uses
type PublicPhotoService interface {
	ListGallery(ctx context.Context, category string) ([]*models.GalleryImage, error)
	ListActiveSlides(ctx context.Context) ([]*models.SlideshowImage, error)
}

// PublicHandler serves the unauthenticated informational endpoints. Only
// published content ever crosses this surface.
type PublicHandler struct {
	notifications PublicContentService
	photos        PublicPhotoService
}

func NewPublicHandler(notifications PublicContentService, photos PublicPhotoService) *PublicHandler {
	return &PublicHandler{
		notifications: notifications,
		photos:        photos,
	}
}

func (h *PublicHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.ListActive(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, notifications)
}

func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.photos.ListGallery(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, images)
}

func (h *PublicHandler) Slideshow(w http.ResponseWriter, r *http.Request) {
	slides, err := h.photos.ListActiveSlides(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, slides)
}
