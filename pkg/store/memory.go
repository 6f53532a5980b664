package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-process usage.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save persists a record in memory.
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

// Get retrieves a record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// FindByHash retrieves the most recent record for a snapshot hash.
func (s *MemoryStore) FindByHash(ctx context.Context, snapshotHash string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  Record
		found bool
	)
	for _, rec := range s.records {
		if rec.SnapshotHash != snapshotHash {
			continue
		}
		if !found || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
			found = true
		}
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return best, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
