package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/dashgrid/internal/adapters/file"
	"github.com/aretw0/dashgrid/internal/adapters/memory"
	"github.com/aretw0/dashgrid/internal/adapters/redis"
	"github.com/aretw0/dashgrid/internal/adapters/sqlite"
	"github.com/aretw0/dashgrid/internal/config"
	"github.com/aretw0/dashgrid/pkg/ports"
)

// openedStore bundles a snapshot store with the resources it owns.
type openedStore struct {
	store  ports.SnapshotStore
	locker ports.DistributedLocker
	close  func() error
}

// openStore builds the snapshot store selected by cfg.Driver.
func openStore(cfg config.StoreConfig, logger *slog.Logger) (*openedStore, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", config.DriverMemory:
		return &openedStore{store: memory.NewStore(), close: noop}, nil

	case config.DriverFile:
		return &openedStore{store: file.New(cfg.Path), close: noop}, nil

	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		opened := &openedStore{store: store, close: store.Close}
		if cfg.Lock {
			opened.locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		return opened, nil

	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(".dashgrid", "layouts.db")
		}
		store, err := sqlite.Open(path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.MigrateUp(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
		return &openedStore{store: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
