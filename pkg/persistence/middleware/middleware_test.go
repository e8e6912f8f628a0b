package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/persistence/middleware"
	"github.com/aretw0/dashgrid/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() domain.LayoutSnapshot {
	return domain.NewLayoutSnapshot([]domain.Zone{
		{ID: "main", Width: domain.TokenWidth(domain.WidthFull), Components: []string{"clock"}},
	})
}

func invalidSnapshot() domain.LayoutSnapshot {
	return domain.NewLayoutSnapshot([]domain.Zone{
		{ID: "a", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"clock"}},
		{ID: "b", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"clock"}},
	})
}

func TestValidationMiddleware(t *testing.T) {
	ctx := context.Background()
	raw := NewMockStore()
	store := middleware.Chain(raw, middleware.NewValidationMiddleware())

	require.NoError(t, store.Save(ctx, "ok", validSnapshot()))
	got, err := store.Load(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, got.Equal(validSnapshot()))

	err = store.Save(ctx, "bad", invalidSnapshot())
	assert.ErrorIs(t, err, domain.ErrComponentPlaced)
	assert.NotContains(t, raw.data, "bad")

	// Corrupted behind the middleware's back.
	raw.data["bad"] = invalidSnapshot()
	_, err = store.Load(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
}

func TestMetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	raw := NewMockStore()
	store := middleware.NewMetricsMiddleware(reg)(raw)

	require.NoError(t, store.Save(ctx, "main", validSnapshot()))
	_, err := store.Load(ctx, "main")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrLayoutNotFound)
	raw.failAll = true
	require.Error(t, store.Save(ctx, "main", validSnapshot()))

	// save/ok, load/ok, load/not_found, save/error
	assert.Equal(t, 4, testutil.CollectAndCount(reg, "dashgrid_snapshot_store_duration_seconds"))

	// Registering twice on the same registry reuses the collector.
	assert.NotPanics(t, func() { middleware.NewMetricsMiddleware(reg) })
}

func TestChainOrder(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SnapshotStore) ports.SnapshotStore {
			return loggingStore{SnapshotStore: next, name: name, calls: &calls}
		}
	}

	store := middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), "x", validSnapshot()))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type loggingStore struct {
	ports.SnapshotStore
	name  string
	calls *[]string
}

func (s loggingStore) Save(ctx context.Context, id string, snap domain.LayoutSnapshot) error {
	*s.calls = append(*s.calls, s.name)
	return s.SnapshotStore.Save(ctx, id, snap)
}
