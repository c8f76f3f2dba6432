package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/kdblock/panel/internal/models"
	pkglogger "github.com/kdblock/panel/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxImageSize = 5 << 20

func newPhotoService(gallery GalleryRepository, slideshow SlideshowRepository, store *MockObjectStore) *PhotoService {
	logger := slog.Default()
	return NewPhotoService(gallery, slideshow, store, testMaxImageSize, logger, pkglogger.NewAuditLogger(logger))
}

func jpegUpload(size int) *ImageUpload {
	return &ImageUpload{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
		Data:        make([]byte, size),
	}
}

func TestPhotoService_UploadGalleryImage(t *testing.T) {
	uploader := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	gallery := &MockGalleryRepository{
		CreateFunc: func(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
			img.ID = "img-1"
			return img, nil
		},
	}
	store := &MockObjectStore{}

	svc := newPhotoService(gallery, &MockSlideshowRepository{}, store)

	img, err := svc.UploadGalleryImage(context.Background(), uploader, &GalleryUploadRequest{
		AltText:  "Town hall front entrance",
		Category: "events",
	}, jpegUpload(2048))

	require.NoError(t, err)
	require.Len(t, store.PutKeys, 1)
	assert.True(t, strings.HasPrefix(store.PutKeys[0], "gallery/"))
	assert.Equal(t, store.PutKeys[0], img.Filename, "row stores the object key")
	assert.Equal(t, store.URL(store.PutKeys[0]), img.URL)
	assert.Equal(t, int64(2048), img.FileSize)
}

func TestPhotoService_UploadGalleryImage_InsertFailureCleansUp(t *testing.T) {
	uploader := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	gallery := &MockGalleryRepository{
		CreateFunc: func(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
			return nil, errors.New("insert failed")
		},
	}
	store := &MockObjectStore{}

	svc := newPhotoService(gallery, &MockSlideshowRepository{}, store)

	_, err := svc.UploadGalleryImage(context.Background(), uploader, &GalleryUploadRequest{
		Category: "events",
	}, jpegUpload(2048))

	assert.ErrorIs(t, err, models.ErrInternalServer)
	require.Len(t, store.PutKeys, 1)
	require.Len(t, store.DeletedKeys, 1)
	assert.Equal(t, store.PutKeys[0], store.DeletedKeys[0])
}

func TestPhotoService_UploadGalleryImage_RejectsNonImage(t *testing.T) {
	uploader := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)
	store := &MockObjectStore{}

	svc := newPhotoService(&MockGalleryRepository{}, &MockSlideshowRepository{}, store)

	_, err := svc.UploadGalleryImage(context.Background(), uploader, &GalleryUploadRequest{
		Category: "events",
	}, &ImageUpload{
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Empty(t, store.PutKeys)
}

func TestPhotoService_UploadGalleryImage_RejectsOversize(t *testing.T) {
	uploader := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)
	store := &MockObjectStore{}

	svc := newPhotoService(&MockGalleryRepository{}, &MockSlideshowRepository{}, store)

	_, err := svc.UploadGalleryImage(context.Background(), uploader, &GalleryUploadRequest{
		Category: "events",
	}, jpegUpload(testMaxImageSize+1))

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Empty(t, store.PutKeys)
}

func TestPhotoService_DeleteGalleryImage(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	gallery := &MockGalleryRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.GalleryImage, error) {
			return &models.GalleryImage{ID: id, Filename: "gallery/abc.jpg"}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	store := &MockObjectStore{}

	svc := newPhotoService(gallery, &MockSlideshowRepository{}, store)

	err := svc.DeleteGalleryImage(context.Background(), actor, "img-1")

	require.NoError(t, err)
	require.Len(t, store.DeletedKeys, 1)
	assert.Equal(t, "gallery/abc.jpg", store.DeletedKeys[0])
}

func TestPhotoService_UploadSlide(t *testing.T) {
	uploader := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	slideshow := &MockSlideshowRepository{
		CreateFunc: func(ctx context.Context, img *models.SlideshowImage) (*models.SlideshowImage, error) {
			img.ID = "slide-1"
			img.DisplayOrder = 4
			return img, nil
		},
	}
	store := &MockObjectStore{}

	svc := newPhotoService(&MockGalleryRepository{}, slideshow, store)

	slide, err := svc.UploadSlide(context.Background(), uploader, &SlideshowUploadRequest{
		Title:    "Summer festival",
		IsActive: true,
	}, jpegUpload(1024))

	require.NoError(t, err)
	require.Len(t, store.PutKeys, 1)
	assert.True(t, strings.HasPrefix(store.PutKeys[0], "slideshow/"))
	assert.Equal(t, 4, slide.DisplayOrder)
	assert.True(t, slide.IsActive)
}

func TestPhotoService_UpdateSlide(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	slideshow := &MockSlideshowRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.SlideshowImage, error) {
			return &models.SlideshowImage{ID: id, Title: "Old title", DisplayOrder: 2, IsActive: true}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, img *models.SlideshowImage) (*models.SlideshowImage, error) {
			return img, nil
		},
	}

	svc := newPhotoService(&MockGalleryRepository{}, slideshow, &MockObjectStore{})

	newOrder := 1
	hidden := false
	slide, err := svc.UpdateSlide(context.Background(), actor, "slide-1", &UpdateSlideRequest{
		DisplayOrder: &newOrder,
		IsActive:     &hidden,
	})

	require.NoError(t, err)
	assert.Equal(t, "Old title", slide.Title, "untouched fields keep their value")
	assert.Equal(t, 1, slide.DisplayOrder)
	assert.False(t, slide.IsActive)
}

func TestPhotoService_DeleteSlide_NotFound(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	slideshow := &MockSlideshowRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.SlideshowImage, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newPhotoService(&MockGalleryRepository{}, slideshow, &MockObjectStore{})

	err := svc.DeleteSlide(context.Background(), actor, "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
