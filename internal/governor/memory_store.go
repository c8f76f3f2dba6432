package governor

import (
	"context"
	"sync"

	"github.com/kdblock/panel/internal/models"
)

// MemoryStore is an in-process SlotStore. Suitable for single-instance
// deployments and tests; the Postgres-backed store in the repositories
// package is used otherwise.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]models.AttemptRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]models.AttemptRecord)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.slots[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, rec *models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = *rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key)
	return nil
}
