package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kdblock/panel/internal/models"
	"github.com/kdblock/panel/internal/storage"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

// NotificationRepository defines the repository methods NotificationService needs
type NotificationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context) ([]*models.Notification, error)
	ListActive(ctx context.Context) ([]*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Update(ctx context.Context, id string, n *models.Notification) (*models.Notification, error)
	Delete(ctx context.Context, id string) error
}

// Attachment content types accepted for notifications.
var allowedAttachmentTypes = map[string]string{
	"text/html": ".html",
	"application/pdf": ".pdf",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

// Attachment is an uploaded file accompanying a notification.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateNotificationRequest is the payload for posting a notice.
type CreateNotificationRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	IsActive   bool   `json:"is_active"`
	DynamicURL string `json:"dynamic_url" validate:"omitempty,url"`
	URLTitle   string `json:"url_title" validate:"omitempty,max=200"`
}

// UpdateNotificationRequest is the payload for editing a notice.
type UpdateNotificationRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Content    *string `json:"content"`
	IsActive   *bool   `json:"is_active"`
	DynamicURL *string `json:"dynamic_url" validate:"omitempty,url"`
	URLTitle   *string `json:"url_title" validate:"omitempty,max=200"`
}

// NotificationResponse represents a notification in HTTP responses.
type NotificationResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	IsActive   bool    `json:"is_active"`
	CreatedBy  string  `json:"created_by"`
	FileURL    *string `json:"file_url,omitempty"`
	FileName   *string `json:"file_name,omitempty"`
	FileType   *string `json:"file_type,omitempty"`
	FileSize   *int64  `json:"file_size,omitempty"`
	DynamicURL *string `json:"dynamic_url,omitempty"`
	URLTitle   *string `json:"url_title,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// NotificationService handles staff notices and their attachments.
type NotificationService struct {
	repo              NotificationRepository
	store             storage.ObjectStore
	maxAttachmentSize int64
	logger            *slog.Logger
	auditLogger       *pkglogger.AuditLogger
}

func NewNotificationService(repo NotificationRepository, store storage.ObjectStore, maxAttachmentSize int64, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *NotificationService {
	return &NotificationService{
		repo:              repo,
		store:             store,
		maxAttachmentSize: maxAttachmentSize,
		logger:            logger,
		auditLogger:       auditLogger,
	}
}

func toNotificationResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		IsActive:   n.IsActive,
		CreatedBy:  n.CreatedByUserID,
		FileURL:    n.FileURL,
		FileName:   n.FileName,
		FileType:   n.FileType,
		FileSize:   n.FileSize,
		DynamicURL: n.DynamicURL,
		URLTitle:   n.URLTitle,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  n.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *NotificationService) List(ctx context.Context) ([]*NotificationResponse, error) {
	return s.toResponses(s.repo.List(ctx))
}

// ListActive returns only published notices, for the public site.
func (s *NotificationService) ListActive(ctx context.Context) ([]*NotificationResponse, error) {
	return s.toResponses(s.repo.ListActive(ctx))
}

func (s *NotificationService) toResponses(notifications []*models.Notification, err error) ([]*NotificationResponse, error) {
	if err != nil {
		s.logger.Error("failed to list notifications", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toNotificationResponse(n))
	}
	return responses, nil
}

func (s *NotificationService) Get(ctx context.Context, id string) (*NotificationResponse, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get notification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return toNotificationResponse(n), nil
}

// Create posts a notice, uploading the attachment first so a failed
// database insert can clean the object back up and never the reverse.
func (s *NotificationService) Create(ctx context.Context, author *models.Admin, req *CreateNotificationRequest, attachment *Attachment) (*NotificationResponse, error) {
	n := &models.Notification{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		IsActive:  req.IsActive,
		CreatedBy: author.ID,
	}
	if req.DynamicURL != "" {
		n.DynamicURL = &req.DynamicURL
	}
	if req.URLTitle != "" {
		n.URLTitle = &req.URLTitle
	}

	var objectKey string
	if attachment != nil {
		if err := s.validateAttachment(attachment); err != nil {
			return nil, err
		}

		objectKey = storage.PrefixNotifications + uuid.New().String() + path.Ext(attachment.Filename)
		if err := s.store.Put(ctx, objectKey, attachment.ContentType, attachment.Data); err != nil {
			return nil, models.ErrInternalServer
		}

		url := s.store.URL(objectKey)
		size := int64(len(attachment.Data))
		n.FileURL = &url
		n.FileName = &attachment.Filename
		n.FileType = &attachment.ContentType
		n.FileSize = &size
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		if objectKey != "" {
			if delErr := s.store.Delete(ctx, objectKey); delErr != nil {
				s.logger.Error("failed to clean up orphaned attachment",
					slog.String("key", objectKey), slog.Any("error", delErr))
			}
		}
		s.logger.Error("failed to create notification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogContentChange("notification_created", author.ID, created.ID)

	return toNotificationResponse(created), nil
}

func (s *NotificationService) Update(ctx context.Context, actor *models.Admin, id string, req *UpdateNotificationRequest) (*NotificationResponse, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get notification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.IsActive != nil {
		n.IsActive = *req.IsActive
	}
	if req.DynamicURL != nil {
		if *req.DynamicURL == "" {
			n.DynamicURL = nil
		} else {
			n.DynamicURL = req.DynamicURL
		}
	}
	if req.URLTitle != nil {
		if *req.URLTitle == "" {
			n.URLTitle = nil
		} else {
			n.URLTitle = req.URLTitle
		}
	}

	updated, err := s.repo.Update(ctx, id, n)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update notification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogContentChange("notification_updated", actor.ID, id)

	return toNotificationResponse(updated), nil
}

// Delete removes a notice and its attachment. The attachment delete is
// best-effort: a dangling object is preferable to a notice that cannot be
// removed.
func (s *NotificationService) Delete(ctx context.Context, actor *models.Admin, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get notification", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete notification", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if n.FileURL != nil {
		key := storage.PrefixNotifications + path.Base(*n.FileURL)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete notification attachment",
				slog.String("key", key), slog.Any("error", delErr))
		}
	}

	s.auditLogger.LogContentChange("notification_deleted", actor.ID, id)

	return nil
}

func (s *NotificationService) validateAttachment(attachment *Attachment) error {
	if int64(len(attachment.Data)) > s.maxAttachmentSize {
		return fmt.Errorf("attachment exceeds %d bytes: %w", s.maxAttachmentSize, models.ErrBadRequest)
	}
	if _, ok := allowedAttachmentTypes[attachment.ContentType]; !ok {
		return fmt.Errorf("unsupported attachment type %q: %w", attachment.ContentType, models.ErrBadRequest)
	}
	return nil
}
