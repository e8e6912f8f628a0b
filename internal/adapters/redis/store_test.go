package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dashgrid/internal/adapters/redis"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	snap := domain.NewLayoutSnapshot([]domain.Zone{
		{ID: "main", Width: domain.TokenWidth(domain.WidthFull), Components: []string{"a"}},
	})
	require.NoError(t, store.Save(ctx, "home", snap))

	assert.True(t, mr.Exists("test:home"))
	assert.Equal(t, time.Minute, mr.TTL("test:home"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "home")
	assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", domain.LayoutSnapshot{}))
	// Index scores are absolute wall-clock times; rewrite it into the past.
	mr.ZAdd(redis.DefaultPrefix+"index", float64(time.Now().Add(-time.Hour).Unix()), "short")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
