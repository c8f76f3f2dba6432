package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/storage"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

// GalleryRepository defines the repository methods PhotoService needs for the gallery
type GalleryRepository interface {
	GetByID(ctx context.Context, id string) (*models.GalleryImage, error)
	List(ctx context.Context, category string) ([]*models.GalleryImage, error)
	Create(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

// SlideshowRepository defines the repository methods PhotoService needs for the slideshow
type SlideshowRepository interface {
	GetByID(ctx context.Context, id string) (*models.SlideshowImage, error)
	List(ctx context.Context) ([]*models.SlideshowImage, error)
	ListActive(ctx context.Context) ([]*models.SlideshowImage, error)
	Create(ctx context.Context, img *models.SlideshowImage) (*models.SlideshowImage, error)
	Update(ctx context.Context, id string, img *models.SlideshowImage) (*models.SlideshowImage, error)
	Delete(ctx context.Context, id string) error
}

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GalleryUploadRequest carries the metadata for a gallery upload.
type GalleryUploadRequest struct {
	AltText  string `json:"alt_text" validate:"max=200"`
	Category string `json:"category" validate:"required,max=50"`
}

// SlideshowUploadRequest carries the metadata for a slideshow upload.
type SlideshowUploadRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
	IsActive    bool   `json:"is_active"`
}

// UpdateSlideRequest edits a slide's metadata or rotation position.
type UpdateSlideRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=1"`
	IsActive     *bool   `json:"is_active"`
}

// PhotoService manages the public gallery and the homepage slideshow.
// Uploads follow the same object-first ordering as notification
// attachments: storage write, then database row, cleanup on insert failure.
type PhotoService struct {
	gallery      GalleryRepository
	slideshow    SlideshowRepository
	store        storage.ObjectStore
	maxImageSize int64
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger
}

func NewPhotoService(gallery GalleryRepository, slideshow SlideshowRepository, store storage.ObjectStore, maxImageSize int64, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *PhotoService {
	return &PhotoService{
		gallery:      gallery,
		slideshow:    slideshow,
		store:        store,
		maxImageSize: maxImageSize,
		logger:       logger,
		auditLogger:  auditLogger,
	}
}

func (s *PhotoService) validateImage(upload *ImageUpload) error {
	if int64(len(upload.Data)) > s.maxImageSize {
		return fmt.Errorf("image exceeds %d bytes: %w", s.maxImageSize, models.ErrBadRequest)
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return fmt.Errorf("unsupported image type %q: %w", upload.ContentType, models.ErrBadRequest)
	}
	return nil
}

func (s *PhotoService) ListGallery(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	images, err := s.gallery.List(ctx, category)
	if err != nil {
		s.logger.Error("failed to list gallery images", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return images, nil
}

func (s *PhotoService) UploadGalleryImage(ctx context.Context, uploader *models.Admin, req *GalleryUploadRequest, upload *ImageUpload) (*models.GalleryImage, error) {
	if err := s.validateImage(upload); err != nil {
		return nil, err
	}

	objectKey := storage.PrefixGallery + uuid.New().String() + path.Ext(upload.Filename)
	if err := s.store.Put(ctx, objectKey, upload.ContentType, upload.Data); err != nil {
		return nil, models.ErrInternalServer
	}

	img := &models.GalleryImage{
		Filename:   objectKey,
		URL:        s.store.URL(objectKey),
		AltText:    req.AltText,
		Category:   req.Category,
		UploadedBy: uploader.ID,
		FileSize:   int64(len(upload.Data)),
	}

	created, err := s.gallery.Create(ctx, img)
	if err != nil {
		if delErr := s.store.Delete(ctx, objectKey); delErr != nil {
			s.logger.Error("failed to clean up orphaned gallery object",
				slog.String("key", objectKey), slog.Any("error", delErr))
		}
		s.logger.Error("failed to create gallery image", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogContentChange("gallery_image_uploaded", uploader.ID, created.ID)

	return created, nil
}

func (s *PhotoService) DeleteGalleryImage(ctx context.Context, actor *models.Admin, id string) error {
	img, err := s.gallery.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get gallery image", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.gallery.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete gallery image", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if delErr := s.store.Delete(ctx, img.Filename); delErr != nil {
		s.logger.Warn("failed to delete gallery object",
			slog.String("key", img.Filename), slog.Any("error", delErr))
	}

	s.auditLogger.LogContentChange("gallery_image_deleted", actor.ID, id)

	return nil
}

func (s *PhotoService) ListSlideshow(ctx context.Context) ([]*models.SlideshowImage, error) {
	slides, err := s.slideshow.List(ctx)
	if err != nil {
		s.logger.Error("failed to list slideshow images", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return slides, nil
}

// ListActiveSlides feeds the public homepage rotation.
func (s *PhotoService) ListActiveSlides(ctx context.Context) ([]*models.SlideshowImage, error) {
	slides, err := s.slideshow.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active slides", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return slides, nil
}

func (s *PhotoService) UploadSlide(ctx context.Context, uploader *models.Admin, req *SlideshowUploadRequest, upload *ImageUpload) (*models.SlideshowImage, error) {
	if err := s.validateImage(upload); err != nil {
		return nil, err
	}

	objectKey := storage.PrefixSlideshow + uuid.New().String() + path.Ext(upload.Filename)
	if err := s.store.Put(ctx, objectKey, upload.ContentType, upload.Data); err != nil {
		return nil, models.ErrInternalServer
	}

	img := &models.SlideshowImage{
		Filename:    objectKey,
		URL:         s.store.URL(objectKey),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		UploadedBy:  uploader.ID,
		FileSize:    int64(len(upload.Data)),
	}

	created, err := s.slideshow.Create(ctx, img)
	if err != nil {
		if delErr := s.store.Delete(ctx, objectKey); delErr != nil {
			s.logger.Error("failed to clean up orphaned slide object",
				slog.String("key", objectKey), slog.Any("error", delErr))
		}
		s.logger.Error("failed to create slide", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogContentChange("slide_uploaded", uploader.ID, created.ID)

	return created, nil
}

func (s *PhotoService) UpdateSlide(ctx context.Context, actor *models.Admin, id string, req *UpdateSlideRequest) (*models.SlideshowImage, error) {
	slide, err := s.slideshow.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get slide", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if req.Title != nil {
		slide.Title = *req.Title
	}
	if req.Description != nil {
		slide.Description = *req.Description
	}
	if req.DisplayOrder != nil {
		slide.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}

	updated, err := s.slideshow.Update(ctx, id, slide)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update slide", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogContentChange("slide_updated", actor.ID, id)

	return updated, nil
}

func (s *PhotoService) DeleteSlide(ctx context.Context, actor *models.Admin, id string) error {
	slide, err := s.slideshow.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get slide", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.slideshow.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete slide", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if delErr := s.store.Delete(ctx, slide.Filename); delErr != nil {
		s.logger.Warn("failed to delete slide object",
			slog.String("key", slide.Filename), slog.Any("error", delErr))
	}

	s.auditLogger.LogContentChange("slide_deleted", actor.ID, id)

	return nil
}
