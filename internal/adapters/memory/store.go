// Package memory provides an in-process SnapshotStore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.LayoutSnapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.LayoutSnapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[layoutID] = copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[layoutID]
	if !ok {
		return domain.LayoutSnapshot{}, domain.ErrLayoutNotFound
	}
	// Copy on read so callers can't mutate store state through shared slices
	return snap.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, layoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, layoutID)
	return nil
}

// List returns stored layout ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
