package services

import (
	"context"
	"time"

	"github.com/kdblock/panel/internal/models"
)

// MockAdminRepository implements the admin repository interfaces for testing
type MockAdminRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.Admin, error)
	GetByUserIDFunc    func(ctx context.Context, userid string) (*models.Admin, error)
	ListFunc           func(ctx context.Context) ([]*models.Admin, error)
	CreateFunc         func(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	UpdateFunc         func(ctx context.Context, id string, admin *models.Admin) (*models.Admin, error)
	UpdatePasswordFunc func(ctx context.Context, id string, passwordHash string) error
	DeleteFunc         func(ctx context.Context, id string) error
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) GetByUserID(ctx context.Context, userid string) (*models.Admin, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userid)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Admin{}, nil
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminRepository) Update(ctx context.Context, id string, admin *models.Admin) (*models.Admin, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, admin)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockAdminRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockNotificationRepository implements NotificationRepository for testing
type MockNotificationRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.Notification, error)
	ListFunc       func(ctx context.Context) ([]*models.Notification, error)
	ListActiveFunc func(ctx context.Context) ([]*models.Notification, error)
	CreateFunc     func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	UpdateFunc     func(ctx context.Context, id string, n *models.Notification) (*models.Notification, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockNotificationRepository) List(ctx context.Context) ([]*models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Notification{}, nil
}

func (m *MockNotificationRepository) ListActive(ctx context.Context) ([]*models.Notification, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return []*models.Notification{}, nil
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNotificationRepository) Update(ctx context.Context, id string, n *models.Notification) (*models.Notification, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, n)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockGalleryRepository implements GalleryRepository for testing
type MockGalleryRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.GalleryImage, error)
	ListFunc    func(ctx context.Context, category string) ([]*models.GalleryImage, error)
	CreateFunc  func(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockGalleryRepository) GetByID(ctx context.Context, id string) (*models.GalleryImage, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockGalleryRepository) List(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, category)
	}
	return []*models.GalleryImage{}, nil
}

func (m *MockGalleryRepository) Create(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, img)
	}
	return nil, models.ErrInternalServer
}

func (m *MockGalleryRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSlideshowRepository implements SlideshowRepository for testing
type MockSlideshowRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.SlideshowImage, error)
	ListFunc       func(ctx context.Context) ([]*models.SlideshowImage, error)
	ListActiveFunc func(ctx context.Context) ([]*models.SlideshowImage, error)
	CreateFunc     func(ctx context.Context, img *models.SlideshowImage) (*models.SlideshowImage, error)
	UpdateFunc     func(ctx context.Context, id string, img *models.SlideshowImage) (*models.SlideshowImage, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockSlideshowRepository) GetByID(ctx context.Context, id string) (*models.SlideshowImage, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSlideshowRepository) List(ctx context.Context) ([]*models.SlideshowImage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.SlideshowImage{}, nil
}

func (m *MockSlideshowRepository) ListActive(ctx context.Context) ([]*models.SlideshowImage, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return []*models.SlideshowImage{}, nil
}

func (m *MockSlideshowRepository) Create(ctx context.Context, img *models.SlideshowImage) (*models.SlideshowImage, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, img)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSlideshowRepository) Update(ctx context.Context, id string, img *models.SlideshowImage) (*models.SlideshowImage, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, img)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSlideshowRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockObjectStore implements storage.ObjectStore for testing, recording
// every call so tests can assert on upload/cleanup ordering.
type MockObjectStore struct {
	PutFunc    func(ctx context.Context, key, contentType string, data []byte) error
	DeleteFunc func(ctx context.Context, key string) error

	PutKeys     []string
	DeletedKeys []string
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	m.PutKeys = append(m.PutKeys, key)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, contentType, data)
	}
	return nil
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.DeletedKeys = append(m.DeletedKeys, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockObjectStore) URL(key string) string {
	return "https://cdn.example.test/" + key
}

// NewTestAdmin builds an active admin account for tests
func NewTestAdmin(id, userid, role string) *models.Admin {
	now := time.Now()
	return &models.Admin{
		ID:           id,
		UserID:       userid,
		PasswordHash: "",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
