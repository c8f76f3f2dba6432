package governor

import (
	"context"
	"fmt"
	"time"

	"github.com/kdblock/panel/internal/models"
)

// SlotStore is the durable slot holding one AttemptRecord per login
// identifier. Get returns (nil, nil) when no record exists.
type SlotStore interface {
	Get(ctx context.Context, key string) (*models.AttemptRecord, error)
	Put(ctx context.Context, key string, rec *models.AttemptRecord) error
	Delete(ctx context.Context, key string) error
}

// Ledger tracks consecutive login failures per identifier on top of a
// SlotStore. An expired lockout is wiped on load, so callers always observe
// either an active lockout or a record with no lockout at all.
type Ledger struct {
	store        SlotStore
	lockoutAfter int
	lockoutFor   time.Duration
}

func NewLedger(store SlotStore, lockoutAfter int, lockoutFor time.Duration) *Ledger {
	return &Ledger{
		store:        store,
		lockoutAfter: lockoutAfter,
		lockoutFor:   lockoutFor,
	}
}

// Load returns the stored record, or the empty record when none exists.
// A record whose lockout has expired is deleted and reported as empty.
func (l *Ledger) Load(ctx context.Context, key string, now time.Time) (models.AttemptRecord, error) {
	rec, err := l.store.Get(ctx, key)
	if err != nil {
		return models.AttemptRecord{}, fmt.Errorf("load attempt record: %w", err)
	}
	if rec == nil {
		return models.AttemptRecord{}, nil
	}

	if rec.LockoutUntil != nil && !now.Before(*rec.LockoutUntil) {
		if err := l.store.Delete(ctx, key); err != nil {
			return models.AttemptRecord{}, fmt.Errorf("reset expired lockout: %w", err)
		}
		return models.AttemptRecord{}, nil
	}

	return *rec, nil
}

// RecordFailure increments the failure count, stamps the failure time, and
// opens the lockout window when the count reaches the threshold.
func (l *Ledger) RecordFailure(ctx context.Context, key string, now time.Time) (models.AttemptRecord, error) {
	rec, err := l.Load(ctx, key, now)
	if err != nil {
		return models.AttemptRecord{}, err
	}

	rec.FailureCount++
	failedAt := now
	rec.LastFailureAt = &failedAt

	if rec.FailureCount >= l.lockoutAfter && rec.LockoutUntil == nil {
		until := now.Add(l.lockoutFor)
		rec.LockoutUntil = &until
	}

	if err := l.store.Put(ctx, key, &rec); err != nil {
		return models.AttemptRecord{}, fmt.Errorf("persist attempt record: %w", err)
	}

	return rec, nil
}

// Reset clears all failure history for the key.
func (l *Ledger) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
