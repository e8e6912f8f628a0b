package ports

import (
	"context"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// SnapshotStore defines the interface for persisting layout snapshots.
// The engine emits snapshots; storing them is the caller's business.
type SnapshotStore interface {
	// Save persists the snapshot under layoutID, replacing any previous one.
	Save(ctx context.Context, layoutID string, snapshot domain.LayoutSnapshot) error

	// Load retrieves the snapshot for layoutID.
	// Returns domain.ErrLayoutNotFound if it does not exist.
	Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error)

	// Delete removes the snapshot for layoutID. Deleting a missing id is not an error.
	Delete(ctx context.Context, layoutID string) error

	// List returns the ids of all stored layouts.
	List(ctx context.Context) ([]string, error)
}
