package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
)

type validationMiddleware struct {
	next ports.SnapshotStore
}

// NewValidationMiddleware rejects snapshots that break the layout rules, both
// before they are written and after they are read back.
func NewValidationMiddleware() Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &validationMiddleware{next: next}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("refusing to save layout %q: %w", layoutID, err)
	}
	return m.next.Save(ctx, layoutID, snap)
}

func (m *validationMiddleware) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	snap, err := m.next.Load(ctx, layoutID)
	if err != nil {
		return snap, err
	}
	if err := snap.Validate(); err != nil {
		return domain.LayoutSnapshot{}, fmt.Errorf("stored layout %q: %w", layoutID, err)
	}
	return snap, nil
}

func (m *validationMiddleware) Delete(ctx context.Context, layoutID string) error {
	return m.next.Delete(ctx, layoutID)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
