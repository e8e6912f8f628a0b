package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates snapshot access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new snapshot Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(layoutID) after unlocking.
func (m *Manager) acquire(layoutID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[layoutID]
	if !exists {
		entry = &lockEntry{}
		m.locks[layoutID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(layoutID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[layoutID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, layoutID)
	}
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, layoutID string) (domain.LayoutSnapshot, error) {
	var snap domain.LayoutSnapshot
	err := m.WithLock(ctx, layoutID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, layoutID)
		return err
	})
	return snap, err
}

// LoadOrInit loads a snapshot; when none exists it persists initial and returns it.
func (m *Manager) LoadOrInit(ctx context.Context, layoutID string, initial domain.LayoutSnapshot) (domain.LayoutSnapshot, bool, error) {
	var (
		snap  domain.LayoutSnapshot
		found bool
	)
	err := m.WithLock(ctx, layoutID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, layoutID)
		if err == nil {
			found = true
			return nil
		}
		if !errors.Is(err, domain.ErrLayoutNotFound) {
			return fmt.Errorf("failed to check layout existence: %w", err)
		}

		snap = initial.Clone()
		if err := m.store.Save(ctx, layoutID, snap); err != nil {
			return fmt.Errorf("failed to initialize layout: %w", err)
		}
		return nil
	})
	return snap, found, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, layoutID string, snap domain.LayoutSnapshot) error {
	return m.WithLock(ctx, layoutID, func(ctx context.Context) error {
		return m.store.Save(ctx, layoutID, snap)
	})
}

// Delete removes a snapshot from the store.
func (m *Manager) Delete(ctx context.Context, layoutID string) error {
	return m.WithLock(ctx, layoutID, func(ctx context.Context) error {
		return m.store.Delete(ctx, layoutID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the layout.
func (m *Manager) WithLock(ctx context.Context, layoutID string, fn func(context.Context) error) error {
	entry := m.acquire(layoutID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(layoutID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, layoutID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"layout_id", layoutID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
