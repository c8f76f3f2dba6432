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

type SlideshowRepository struct {
	pool *pgxpool.Pool
}

func NewSlideshowRepository(db *database.DB) *SlideshowRepository {
	return &SlideshowRepository{pool: db.Pool}
}

func scanSlideshowRow(scanner rowScanner) (*models.SlideshowImage, error) {
	var img models.SlideshowImage

	err := scanner.Scan(
		&img.ID, &img.Filename, &img.URL, &img.Title, &img.Description,
		&img.DisplayOrder, &img.IsActive, &img.UploadedBy, &img.FileSize, &img.UploadedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &img, nil
}

func scanSlideshowRows(rows pgx.Rows) ([]*models.SlideshowImage, error) {
	defer rows.Close()

	images := make([]*models.SlideshowImage, 0)

	for rows.Next() {
		img, err := scanSlideshowRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slideshow image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return images, nil
}

func (r *SlideshowRepository) GetByID(ctx context.Context, id string) (*models.SlideshowImage, error) {
	query := `
		SELECT id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at
		FROM slideshow_images WHERE id = $1
	`

	return scanSlideshowRow(r.pool.QueryRow(ctx, query, id))
}

func (r *SlideshowRepository) List(ctx context.Context) ([]*models.SlideshowImage, error) {
	query := `
		SELECT id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at
		FROM slideshow_images ORDER BY display_order ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query slideshow images: %w", err)
	}

	return scanSlideshowRows(rows)
}

// ListActive returns only the slides the homepage rotation should show,
// ordered by display_order ascending.
func (r *SlideshowRepository) ListActive(ctx context.Context) ([]*models.SlideshowImage, error) {
	query := `
		SELECT id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at
		FROM slideshow_images WHERE is_active = true ORDER BY display_order ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active slideshow images: %w", err)
	}

	return scanSlideshowRows(rows)
}

func (r *SlideshowRepository) Create(ctx context.Context, img *models.SlideshowImage) (*models.SlideshowImage, error) {
	img.ID = uuid.New().String()
	img.UploadedAt = time.Now()

	// New slides go to the end of the rotation.
	query := `
		INSERT INTO slideshow_images (id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM slideshow_images),
			$6, $7, $8, $9)
		RETURNING id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at
	`

	return scanSlideshowRow(r.pool.QueryRow(ctx, query,
		img.ID, img.Filename, img.URL, img.Title, img.Description,
		img.IsActive, img.UploadedBy, img.FileSize, img.UploadedAt,
	))
}

func (r *SlideshowRepository) Update(ctx context.Context, id string, img *models.SlideshowImage) (*models.SlideshowImage, error) {
	query := `
		UPDATE slideshow_images
		SET title = $1, description = $2, display_order = $3, is_active = $4
		WHERE id = $5
		RETURNING id, filename, url, title, description, display_order, is_active, uploaded_by, file_size, uploaded_at
	`

	return scanSlideshowRow(r.pool.QueryRow(ctx, query,
		img.Title, img.Description, img.DisplayOrder, img.IsActive, id,
	))
}

func (r *SlideshowRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM slideshow_images WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
