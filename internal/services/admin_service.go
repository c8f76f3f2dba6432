package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kdblock/panel/internal/models"
	pkgauth "github.com/kdblock/panel/pkg/auth"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

// AdminAccountRepository defines the repository methods AdminService needs
type AdminAccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUserID(ctx context.Context, userid string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	Update(ctx context.Context, id string, admin *models.Admin) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// AdminResponse represents an admin account in HTTP responses. The password
// hash never leaves the service layer.
type AdminResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"userid"`
	Role               string  `json:"role"`
	NotificationAccess bool    `json:"notification_access"`
	PhotoAccess        bool    `json:"photo_access"`
	CreatedBy          *string `json:"created_by,omitempty"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// CreateAdminRequest is the payload for creating a sub-admin account.
type CreateAdminRequest struct {
	UserID             string `json:"userid" validate:"required,min=3,max=50,alphanum"`
	Password           string `json:"password" validate:"required"`
	NotificationAccess bool   `json:"notification_access"`
	PhotoAccess        bool   `json:"photo_access"`
}

// UpdateAdminRequest is the payload for updating a sub-admin's flags.
type UpdateAdminRequest struct {
	NotificationAccess *bool `json:"notification_access"`
	PhotoAccess        *bool `json:"photo_access"`
	IsActive           *bool `json:"is_active"`
}

// AdminService handles admin account management. Only the main admin
// reaches these operations; the capability middleware enforces that.
type AdminService struct {
	repo        AdminAccountRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAdminService(repo AdminAccountRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AdminService {
	return &AdminService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func toAdminResponse(admin *models.Admin) *AdminResponse {
	return &AdminResponse{
		ID:                 admin.ID,
		UserID:             admin.UserID,
		Role:               admin.Role,
		NotificationAccess: admin.NotificationAccess,
		PhotoAccess:        admin.PhotoAccess,
		CreatedBy:          admin.CreatedBy,
		IsActive:           admin.IsActive,
		CreatedAt:          admin.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          admin.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *AdminService) List(ctx context.Context) ([]*AdminResponse, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*AdminResponse, 0, len(admins))
	for _, admin := range admins {
		responses = append(responses, toAdminResponse(admin))
	}
	return responses, nil
}

// Create adds a sub-admin account. Only sub-admins can be created through
// the panel; the single main admin is seeded at startup.
func (s *AdminService) Create(ctx context.Context, creator *models.Admin, req *CreateAdminRequest) (*AdminResponse, error) {
	if err := pkgauth.ValidatePassword(req.Password); err != nil {
		return nil, models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	admin := &models.Admin{
		UserID:             strings.ToLower(strings.TrimSpace(req.UserID)),
		PasswordHash:       hash,
		Role:               models.RoleSubAdmin,
		NotificationAccess: req.NotificationAccess,
		PhotoAccess:        req.PhotoAccess,
		CreatedBy:          &creator.ID,
		IsActive:           true,
	}

	created, err := s.repo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create admin", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("admin_created", creator.ID, "", map[string]string{
		"created_admin_id": created.ID,
	})

	return toAdminResponse(created), nil
}

func (s *AdminService) Update(ctx context.Context, actor *models.Admin, id string, req *UpdateAdminRequest) (*AdminResponse, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get admin", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The main admin's capabilities are fixed and its account cannot be
	// deactivated from the panel.
	if admin.Role == models.RoleMainAdmin {
		return nil, models.ErrForbidden
	}

	if req.NotificationAccess != nil {
		admin.NotificationAccess = *req.NotificationAccess
	}
	if req.PhotoAccess != nil {
		admin.PhotoAccess = *req.PhotoAccess
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, id, admin)
	if err != nil {
		s.logger.Error("failed to update admin", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("admin_updated", actor.ID, "", map[string]string{
		"updated_admin_id": id,
	})

	return toAdminResponse(updated), nil
}

// ChangePassword sets a new password for an account. Sub-admins may only
// change their own; the main admin may reset anyone's.
func (s *AdminService) ChangePassword(ctx context.Context, actor *models.Admin, id, newPassword string) error {
	if actor.Role != models.RoleMainAdmin && actor.ID != id {
		return models.ErrForbidden
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("password_changed", actor.ID, "", map[string]string{
		"target_admin_id": id,
	})

	return nil
}

// Delete removes a sub-admin account. The main admin account cannot be
// deleted; the repository enforces that with a role guard in the query.
func (s *AdminService) Delete(ctx context.Context, actor *models.Admin, id string) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get admin", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if admin.Role == models.RoleMainAdmin {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete admin", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("admin_deleted", actor.ID, "", map[string]string{
		"deleted_admin_id": id,
	})

	return nil
}
