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

type GalleryRepository struct {
	pool *pgxpool.Pool
}

func NewGalleryRepository(db *database.DB) *GalleryRepository {
	return &GalleryRepository{pool: db.Pool}
}

func scanGalleryRow(scanner rowScanner) (*models.GalleryImage, error) {
	var img models.GalleryImage

	err := scanner.Scan(
		&img.ID, &img.Filename, &img.URL, &img.AltText, &img.Category,
		&img.UploadedBy, &img.FileSize, &img.UploadedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &img, nil
}

func scanGalleryRows(rows pgx.Rows) ([]*models.GalleryImage, error) {
	defer rows.Close()

	images := make([]*models.GalleryImage, 0)

	for rows.Next() {
		img, err := scanGalleryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return images, nil
}

func (r *GalleryRepository) GetByID(ctx context.Context, id string) (*models.GalleryImage, error) {
	query := `
		SELECT id, filename, url, alt_text, category, uploaded_by, file_size, uploaded_at
		FROM gallery_images WHERE id = $1
	`

	return scanGalleryRow(r.pool.QueryRow(ctx, query, id))
}

// List returns gallery images newest first, optionally filtered by category.
func (r *GalleryRepository) List(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	query := `
		SELECT id, filename, url, alt_text, category, uploaded_by, file_size, uploaded_at
		FROM gallery_images
	`
	args := []interface{}{}

	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery images: %w", err)
	}

	return scanGalleryRows(rows)
}

func (r *GalleryRepository) Create(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
	img.ID = uuid.New().String()
	img.UploadedAt = time.Now()

	query := `
		INSERT INTO gallery_images (id, filename, url, alt_text, category, uploaded_by, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, filename, url, alt_text, category, uploaded_by, file_size, uploaded_at
	`

	return scanGalleryRow(r.pool.QueryRow(ctx, query,
		img.ID, img.Filename, img.URL, img.AltText, img.Category,
		img.UploadedBy, img.FileSize, img.UploadedAt,
	))
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM gallery_images WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
