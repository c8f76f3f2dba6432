package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kdblock/panel/internal/database"
	"github.com/kdblock/panel/internal/models"
)

// AttemptRepository persists per-identifier login failure records. It backs
// the governor's ledger so lockouts survive restarts and are shared across
// instances.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{pool: db.Pool}
}

// Get returns the record for a login identifier, or nil when none exists.
func (r *AttemptRepository) Get(ctx context.Context, key string) (*models.AttemptRecord, error) {
	query := `
		SELECT failure_count, last_failure_at, lockout_until
		FROM login_attempt_slots WHERE identifier = $1
	`

	var rec models.AttemptRecord
	err := r.pool.QueryRow(ctx, query, key).Scan(&rec.FailureCount, &rec.LastFailureAt, &rec.LockoutUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

func (r *AttemptRepository) Put(ctx context.Context, key string, rec *models.AttemptRecord) error {
	query := `
		INSERT INTO login_attempt_slots (identifier, failure_count, last_failure_at, lockout_until)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identifier) DO UPDATE
		SET failure_count = EXCLUDED.failure_count,
			last_failure_at = EXCLUDED.last_failure_at,
			lockout_until = EXCLUDED.lockout_until
	`

	_, err := r.pool.Exec(ctx, query, key, rec.FailureCount, rec.LastFailureAt, rec.LockoutUntil)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *AttemptRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM login_attempt_slots WHERE identifier = $1`

	_, err := r.pool.Exec(ctx, query, key)
	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// DeleteExpired purges slots whose lockout window has passed, plus stale
// failure trails that never reached a lockout. Run periodically from the
// background cleanup task.
func (r *AttemptRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM login_attempt_slots
		WHERE lockout_until <= CURRENT_TIMESTAMP
		   OR (lockout_until IS NULL AND last_failure_at <= CURRENT_TIMESTAMP - INTERVAL '24 hours')
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
