package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kdblock/panel/internal/auth"
	"github.com/kdblock/panel/internal/models"
	pkgauth "github.com/kdblock/panel/pkg/auth"
	pkglogger "github.com/kdblock/panel/pkg/logger"
)

// AdminRepository defines the repository methods the auth service needs
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUserID(ctx context.Context, userid string) (*models.Admin, error)
}

// AuthService verifies credentials and mints sessions. It plugs into the
// login governor as both its verifier and its session issuer.
type AuthService struct {
	repo        AdminRepository
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(repo AdminRepository, tm *auth.TokenManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Verify checks a login name and password. Every rejection path returns
// models.ErrUnauthorized so callers cannot distinguish an unknown account
// from a wrong password or a deactivated one.
func (s *AuthService) Verify(ctx context.Context, identifier, secret string) (*models.Admin, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || secret == "" {
		return nil, models.ErrUnauthorized
	}

	admin, err := s.repo.GetByUserID(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogLoginAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Identifier:    identifier,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get admin by userid", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsActive {
		s.auditLogger.LogLoginAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			Identifier:    identifier,
			FailureReason: "account_deactivated",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, secret); err != nil {
		s.auditLogger.LogLoginAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			Identifier:    identifier,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, models.ErrUnauthorized
	}

	s.auditLogger.LogLoginAttempt(pkglogger.AuditEvent{
		EventType:  "login_succeeded",
		AdminID:    admin.ID,
		Identifier: identifier,
		Success:    true,
	})

	return admin, nil
}

// Issue mints a session token for a verified admin.
func (s *AuthService) Issue(_ context.Context, admin *models.Admin) (*models.Session, error) {
	return s.tm.GenerateSessionToken(admin)
}
