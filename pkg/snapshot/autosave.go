package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// Autosaver persists the latest layout snapshot in the background.
// Bursts of changes coalesce: only the newest pending snapshot is written.
type Autosaver struct {
	mgr      *Manager
	layoutID string
	timeout  time.Duration
	logger   *slog.Logger
	onSaved  func(domain.LayoutSnapshot, error)

	mu      sync.Mutex
	pending *domain.LayoutSnapshot
	wake    chan struct{}
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithSaveTimeout bounds each background write (default 5s).
func WithSaveTimeout(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithSaveCallback is called after every write attempt.
func WithSaveCallback(fn func(domain.LayoutSnapshot, error)) AutosaveOption {
	return func(a *Autosaver) {
		a.onSaved = fn
	}
}

// NewAutosaver creates an Autosaver for layoutID.
func NewAutosaver(mgr *Manager, layoutID string, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		mgr:      mgr,
		layoutID: layoutID,
		timeout:  5 * time.Second,
		logger:   mgr.logger,
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Listener is a layout-changed listener that schedules a write. It never blocks.
func (a *Autosaver) Listener(evt *domain.LayoutEvent) {
	snap := evt.Snapshot.Clone()
	a.mu.Lock()
	a.pending = &snap
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Run writes pending snapshots until ctx is canceled, then flushes what is left.
func (a *Autosaver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
			_ = a.Flush(flushCtx)
			cancel()
			return
		case <-a.wake:
			// A write in flight completes even if ctx is canceled meanwhile.
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
			_ = a.Flush(saveCtx)
			cancel()
		}
	}
}

// Flush writes the pending snapshot, if any, synchronously.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()
	if snap == nil {
		return nil
	}

	err := a.mgr.Save(ctx, a.layoutID, *snap)
	if err != nil {
		a.logger.Error("autosave failed", "layout_id", a.layoutID, "err", err)
	} else {
		a.logger.Debug("layout saved", "layout_id", a.layoutID, "components", snap.ComponentCount())
	}
	if a.onSaved != nil {
		a.onSaved(*snap, err)
	}
	return err
}
