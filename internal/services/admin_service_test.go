package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/kdblock/panel/internal/models"
	pkglogger "github.com/kdblock/panel/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(repo AdminAccountRepository) *AdminService {
	logger := slog.Default()
	return NewAdminService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestAdminService_Create_Success(t *testing.T) {
	creator := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	var created *models.Admin
	repo := &MockAdminRepository{
		CreateFunc: func(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
			created = admin
			admin.ID = "sub-1"
			return admin, nil
		},
	}

	svc := newAdminService(repo)

	resp, err := svc.Create(context.Background(), creator, &CreateAdminRequest{
		UserID:             "Clerk2",
		Password:           "Sensible-Pass-7",
		NotificationAccess: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "clerk2", resp.UserID, "userid is normalized to lowercase")
	assert.Equal(t, models.RoleSubAdmin, resp.Role)
	assert.True(t, resp.NotificationAccess)
	assert.False(t, resp.PhotoAccess)

	require.NotNil(t, created)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "main-1", *created.CreatedBy)
	assert.NotEqual(t, "Sensible-Pass-7", created.PasswordHash, "password must be hashed")
}

func TestAdminService_Create_DuplicateUserID(t *testing.T) {
	creator := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	repo := &MockAdminRepository{
		CreateFunc: func(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newAdminService(repo)

	_, err := svc.Create(context.Background(), creator, &CreateAdminRequest{
		UserID:   "clerk2",
		Password: "Sensible-Pass-7",
	})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAdminService_Create_WeakPassword(t *testing.T) {
	creator := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)
	repoCalled := false

	repo := &MockAdminRepository{
		CreateFunc: func(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
			repoCalled = true
			return admin, nil
		},
	}

	svc := newAdminService(repo)

	_, err := svc.Create(context.Background(), creator, &CreateAdminRequest{
		UserID:   "clerk2",
		Password: "short",
	})

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.False(t, repoCalled)
}

func TestAdminService_Update_MainAdminProtected(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)
	inactive := false

	repo := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin), nil
		},
	}

	svc := newAdminService(repo)

	_, err := svc.Update(context.Background(), actor, "main-1", &UpdateAdminRequest{IsActive: &inactive})

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAdminService_Delete_MainAdminProtected(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)

	repo := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin), nil
		},
	}

	svc := newAdminService(repo)

	err := svc.Delete(context.Background(), actor, "main-1")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAdminService_Delete_SubAdmin(t *testing.T) {
	actor := NewTestAdmin("main-1", "mainadmin", models.RoleMainAdmin)
	deleted := ""

	repo := &MockAdminRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Admin, error) {
			return NewTestAdmin("sub-1", "clerk2", models.RoleSubAdmin), nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := newAdminService(repo)

	err := svc.Delete(context.Background(), actor, "sub-1")

	assert.NoError(t, err)
	assert.Equal(t, "sub-1", deleted)
}

func TestAdminService_ChangePassword_SubAdminOwnOnly(t *testing.T) {
	actor := NewTestAdmin("sub-1", "clerk2", models.RoleSubAdmin)

	svc := newAdminService(&MockAdminRepository{})

	err := svc.ChangePassword(context.Background(), actor, "sub-2", "New-Pass-123")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAdminService_ChangePassword_Self(t *testing.T) {
	actor := NewTestAdmin("sub-1", "clerk2", models.RoleSubAdmin)
	var storedHash string

	repo := &MockAdminRepository{
		UpdatePasswordFunc: func(ctx context.Context, id string, passwordHash string) error {
			storedHash = passwordHash
			return nil
		},
	}

	svc := newAdminService(repo)

	err := svc.ChangePassword(context.Background(), actor, "sub-1", "New-Pass-123")

	require.NoError(t, err)
	assert.NotEmpty(t, storedHash)
	assert.NotEqual(t, "New-Pass-123", storedHash)
}
