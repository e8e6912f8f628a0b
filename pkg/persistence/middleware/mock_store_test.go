package middleware_test

import (
	"context"
	"errors"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It stores whatever it is given, valid or not.
type MockStore struct {
	data    map[string]domain.LayoutSnapshot
	failAll bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.LayoutSnapshot),
	}
}

var errBroken = errors.New("store broken")

func (s *MockStore) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	if s.failAll {
		return errBroken
	}
	s.data[layoutID] = snap
	return nil
}

func (s *MockStore) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	if s.failAll {
		return domain.LayoutSnapshot{}, errBroken
	}
	snap, ok := s.data[layoutID]
	if !ok {
		return domain.LayoutSnapshot{}, domain.ErrLayoutNotFound
	}
	return snap, nil
}

func (s *MockStore) Delete(ctx context.Context, layoutID string) error {
	delete(s.data, layoutID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.SnapshotStore = (*MockStore)(nil)
