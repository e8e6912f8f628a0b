package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	return domain.LayoutSnapshot{}, nil
}
func (m *MockStore) Delete(ctx context.Context, layoutID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)        { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("layout-%d", i)
		_ = mgr.Save(ctx, id, domain.LayoutSnapshot{})
		_ = mgr.Delete(ctx, id)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
