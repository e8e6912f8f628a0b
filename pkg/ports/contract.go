package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	layoutID := "contract-test-layout-" + time.Now().Format("20060102150405")

	sample := domain.NewLayoutSnapshot([]domain.Zone{
		{ID: "left", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"clock", "weather"}},
		{ID: "right", Width: domain.CustomWidth(420), Components: []string{}},
	})

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, layoutID, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, layoutID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sample.Order, loaded.Order)
		assert.True(t, sample.Equal(loaded), "loaded snapshot should equal saved one")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		next := sample.Clone()
		z := next.Zones["right"]
		z.Components = []string{"clock"}
		next.Zones["right"] = z
		left := next.Zones["left"]
		left.Components = []string{"weather"}
		next.Zones["left"] = left

		require.NoError(t, store.Save(ctx, layoutID, next))
		loaded, err := store.Load(ctx, layoutID)
		require.NoError(t, err)
		assert.Equal(t, []string{"clock"}, loaded.Zones["right"].Components)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+layoutID)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, layoutID, sample))

		err := store.Delete(ctx, layoutID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, layoutID)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound, "Load after Delete should return ErrLayoutNotFound")

		assert.NoError(t, store.Delete(ctx, layoutID), "Delete of a missing layout should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := layoutID + "-1"
		id2 := layoutID + "-2"
		_ = store.Save(ctx, id1, sample)
		_ = store.Save(ctx, id2, sample)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		layouts, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, layouts, id1)
		assert.Contains(t, layouts, id2)
	})
}
