package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kdblock/panel/internal/database"
	"github.com/kdblock/panel/internal/models"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAdminRow handles nullable fields and populates an Admin model from a database row
func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	var createdBy *string

	err := scanner.Scan(
		&admin.ID, &admin.UserID, &admin.PasswordHash, &admin.Role,
		&admin.NotificationAccess, &admin.PhotoAccess,
		&createdBy, &admin.IsActive,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	admin.CreatedBy = createdBy

	return &admin, nil
}

func scanAdminRows(rows pgx.Rows) ([]*models.Admin, error) {
	defer rows.Close()

	admins := make([]*models.Admin, 0)

	for rows.Next() {
		admin, err := scanAdminRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return admins, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		SELECT id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at
		FROM admins WHERE id = $1
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AdminRepository) GetByUserID(ctx context.Context, userid string) (*models.Admin, error) {
	query := `
		SELECT id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at
		FROM admins WHERE userid = $1
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, userid))
}

func (r *AdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	query := `
		SELECT id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at
		FROM admins ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}

	return scanAdminRows(rows)
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.Role == "" {
		admin.Role = models.RoleSubAdmin
	}

	query := `
		INSERT INTO admins (id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.UserID, admin.PasswordHash, admin.Role,
		admin.NotificationAccess, admin.PhotoAccess,
		admin.CreatedBy, admin.IsActive,
		admin.CreatedAt, admin.UpdatedAt,
	))
}

func (r *AdminRepository) Update(ctx context.Context, id string, admin *models.Admin) (*models.Admin, error) {
	admin.UpdatedAt = time.Now()

	query := `
		UPDATE admins SET notification_access = $1, photo_access = $2, is_active = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, userid, password_hash, role, notification_access, photo_access, created_by, is_active, created_at, updated_at
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.NotificationAccess, admin.PhotoAccess, admin.IsActive, admin.UpdatedAt, id,
	))
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM admins WHERE id = $1 AND role <> $2`

	result, err := r.pool.Exec(ctx, query, id, models.RoleMainAdmin)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// CountMainAdmins reports how many main admin accounts exist, used by the
// startup bootstrap to decide whether to seed one.
func (r *AdminRepository) CountMainAdmins(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM admins WHERE role = $1`

	var count int
	err := r.pool.QueryRow(ctx, query, models.RoleMainAdmin).Scan(&count)
	return count, err
}
