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

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{pool: db.Pool}
}

// notificationColumns joins the author's login name so listings can show who
// posted each notice without a second query.
const notificationColumns = `
	n.id, n.title, n.content, n.is_active, n.created_by, a.userid,
	n.file_url, n.file_name, n.file_type, n.file_size, n.dynamic_url, n.url_title,
	n.created_at, n.updated_at
`

func scanNotificationRow(scanner rowScanner) (*models.Notification, error) {
	var n models.Notification

	err := scanner.Scan(
		&n.ID, &n.Title, &n.Content, &n.IsActive, &n.CreatedBy, &n.CreatedByUserID,
		&n.FileURL, &n.FileName, &n.FileType, &n.FileSize, &n.DynamicURL, &n.URLTitle,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &n, nil
}

func scanNotificationRows(rows pgx.Rows) ([]*models.Notification, error) {
	defer rows.Close()

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		n, err := scanNotificationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications n JOIN admins a ON a.id = n.created_by
		WHERE n.id = $1
	`

	return scanNotificationRow(r.pool.QueryRow(ctx, query, id))
}

func (r *NotificationRepository) List(ctx context.Context) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications n JOIN admins a ON a.id = n.created_by
		ORDER BY n.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	return scanNotificationRows(rows)
}

// ListActive returns only published notices, newest first. This feeds the
// public site and must not leak drafts.
func (r *NotificationRepository) ListActive(ctx context.Context) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications n JOIN admins a ON a.id = n.created_by
		WHERE n.is_active = true
		ORDER BY n.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active notifications: %w", err)
	}

	return scanNotificationRows(rows)
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.ID = uuid.New().String()

	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	query := `
		INSERT INTO notifications (id, title, content, is_active, created_by, file_url, file_name, file_type, file_size, dynamic_url, url_title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.Title, n.Content, n.IsActive, n.CreatedBy,
		n.FileURL, n.FileName, n.FileType, n.FileSize, n.DynamicURL, n.URLTitle,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return r.GetByID(ctx, n.ID)
}

func (r *NotificationRepository) Update(ctx context.Context, id string, n *models.Notification) (*models.Notification, error) {
	n.UpdatedAt = time.Now()

	query := `
		UPDATE notifications
		SET title = $1, content = $2, is_active = $3, file_url = $4, file_name = $5, file_type = $6, file_size = $7, dynamic_url = $8, url_title = $9, updated_at = $10
		WHERE id = $11
	`

	result, err := r.pool.Exec(ctx, query,
		n.Title, n.Content, n.IsActive,
		n.FileURL, n.FileName, n.FileType, n.FileSize, n.DynamicURL, n.URLTitle,
		n.UpdatedAt, id,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notifications WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
