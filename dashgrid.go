package dashgrid

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/dashgrid/internal/activation"
	"github.com/aretw0/dashgrid/internal/bridge"
	"github.com/aretw0/dashgrid/internal/drag"
	"github.com/aretw0/dashgrid/internal/hittest"
	"github.com/aretw0/dashgrid/internal/layout"
	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
)

// Engine is the high-level entry point for the dashgrid library.
// It wires the layout store, the hit tester, the pointer bridge and the drag
// state machine behind a single API.
type Engine struct {
	store   *layout.Store
	hits    *hittest.Registry
	bridge  *bridge.Bridge
	machine *drag.Machine

	policy    domain.ActivationPolicy
	tolerance float64
	registry  ports.ComponentRegistry
	timer     activation.Timer
	ack       ports.Acknowledger
	hooks     []domain.LifecycleHooks
	logger    *slog.Logger
	Name      string

	closeOnce sync.Once
	hookSub   *layout.Subscription
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// Subscription is returned by OnLayoutChanged.
type Subscription interface {
	Remove()
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithActivation selects immediate or long-press activation (default: immediate).
func WithActivation(p domain.ActivationPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithPressTolerance cancels a long-press when the pointer moves farther than
// distance before activation. Zero, the default, disables it.
func WithPressTolerance(distance float64) Option {
	return func(e *Engine) {
		e.tolerance = distance
	}
}

// WithRegistry injects the component registry used for lookups and drag validation.
func WithRegistry(r ports.ComponentRegistry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithTimer replaces the activation timer, e.g. with activation.NewManual in tests.
func WithTimer(t activation.Timer) Option {
	return func(e *Engine) {
		e.timer = t
	}
}

// WithAcknowledger sets the best-effort signal fired when a long-press activates.
func WithAcknowledger(a ports.Acknowledger) Option {
	return func(e *Engine) {
		e.ack = a
	}
}

// WithLifecycleHooks registers observability hooks. It may be given more than once;
// every hook set is called, in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an Engine from the initial zone configuration.
// Duplicate zone ids, or a component listed in two zones, abort construction.
func New(zones []domain.ZoneDescriptor, opts ...Option) (*Engine, error) {
	eng := &Engine{policy: domain.Immediate()}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil down, which would overwrite defaults)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("layout", eng.Name)
	}
	if eng.timer == nil {
		eng.timer = activation.NewClock()
	}

	store, err := layout.New(zones,
		layout.WithRegistry(eng.registry),
		layout.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid layout configuration: %w", err)
	}
	eng.store = store
	eng.hits = hittest.New()
	eng.bridge = bridge.New()

	hooks := domain.ComposeHooks(eng.hooks...)
	if hooks.OnLayoutChanged != nil {
		eng.hookSub = store.Subscribe(hooks.OnLayoutChanged)
	}

	eng.machine = drag.New(store, eng.hits, eng.bridge,
		drag.WithPolicy(eng.policy),
		drag.WithTolerance(eng.tolerance),
		drag.WithTimer(eng.timer),
		drag.WithRegistry(eng.registry),
		drag.WithAcknowledger(eng.ack),
		drag.WithHooks(hooks),
		drag.WithLogger(eng.logger),
	)
	eng.policy = eng.machine.Policy()

	eng.logger.Debug("engine initialized", "zones", len(zones), "activation", eng.policy.Mode)
	return eng, nil
}

// Policy returns the effective activation policy.
func (e *Engine) Policy() domain.ActivationPolicy {
	return e.policy
}

// Layout returns an immutable snapshot of the current layout.
func (e *Engine) Layout() domain.LayoutSnapshot {
	return e.store.Snapshot()
}

// Zone returns a copy of one zone.
func (e *Engine) Zone(zoneID string) (domain.Zone, bool) {
	return e.store.Zone(zoneID)
}

// MoveComponent relocates a component to the end of another zone.
func (e *Engine) MoveComponent(componentID, fromZoneID, toZoneID string) error {
	return e.store.Move(componentID, fromZoneID, toZoneID)
}

// AddZone appends a zone with a generated id.
func (e *Engine) AddZone(width domain.Width, initial ...string) (string, error) {
	return e.store.AddZone(width, initial...)
}

// RemoveZone deletes a zone, migrating its components to the first remaining
// zone, and forgets its registered bounds.
func (e *Engine) RemoveZone(zoneID string) error {
	if err := e.store.RemoveZone(zoneID); err != nil {
		return err
	}
	e.hits.UnregisterZone(zoneID)
	return nil
}

// ChangeZoneWidth updates a zone's width.
func (e *Engine) ChangeZoneWidth(zoneID string, width domain.Width) error {
	return e.store.ChangeZoneWidth(zoneID, width)
}

// RestoreLayout replaces the whole layout with a previously saved snapshot.
func (e *Engine) RestoreLayout(snap domain.LayoutSnapshot) error {
	e.machine.Teardown()
	return e.store.Replace(snap)
}

// GetComponent resolves a component through the registry; unknown ids are absent.
func (e *Engine) GetComponent(componentID string) (domain.ComponentDescriptor, bool) {
	return e.store.GetComponent(componentID)
}

// OnLayoutChanged registers a listener called synchronously after every mutation.
func (e *Engine) OnLayoutChanged(fn func(*domain.LayoutEvent)) Subscription {
	return e.store.Subscribe(fn)
}

// RegisterRegion registers or refreshes a drop-target region.
func (e *Engine) RegisterRegion(r domain.Region) {
	e.hits.Register(r)
}

// RegisterZoneBounds registers the bounds of a zone under the zone's own id.
func (e *Engine) RegisterZoneBounds(zoneID string, bounds domain.Rect) {
	e.hits.Register(domain.Region{ID: zoneID, Bounds: bounds})
}

// UnregisterRegion forgets a region.
func (e *Engine) UnregisterRegion(id string) {
	e.hits.Unregister(id)
}

// HitTest resolves a point to the zone beneath it.
func (e *Engine) HitTest(p domain.Point) (string, bool) {
	return e.hits.HitTest(p)
}

// PointerDown starts a gesture on a drag handle. It reports false when the
// gesture was ignored.
func (e *Engine) PointerDown(g domain.Grab) bool {
	return e.machine.PointerDown(g)
}

// PointerMove forwards a pointer move to the active session, if any.
func (e *Engine) PointerMove(p domain.Point) {
	e.bridge.Dispatch(bridge.PointerEvent{Kind: bridge.PointerMove, Point: p})
}

// PointerUp forwards the release to the active session, if any.
func (e *Engine) PointerUp(p domain.Point) {
	e.bridge.Dispatch(bridge.PointerEvent{Kind: bridge.PointerUp, Point: p})
}

// Session returns the in-flight drag session.
func (e *Engine) Session() (domain.SessionSnapshot, bool) {
	return e.machine.Session()
}

// State returns the drag state machine's current state.
func (e *Engine) State() domain.SessionState {
	return e.machine.State()
}

// CancelDrag tears down the in-flight session without mutating the layout.
func (e *Engine) CancelDrag() bool {
	return e.machine.Teardown()
}

// Close cancels any session and detaches the engine's own hook listener.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.machine.Teardown()
		if e.hookSub != nil {
			e.hookSub.Remove()
		}
	})
	return nil
}
