package drag_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/dashgrid/internal/activation"
	"github.com/aretw0/dashgrid/internal/bridge"
	"github.com/aretw0/dashgrid/internal/drag"
	"github.com/aretw0/dashgrid/internal/hittest"
	"github.com/aretw0/dashgrid/internal/layout"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
	"github.com/aretw0/dashgrid/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store  *layout.Store
	hits   *hittest.Registry
	bridge *bridge.Bridge
	timer  *activation.Manual
	m      *drag.Machine

	layoutEvents int
	ends         []*domain.DragEvent
	starts       []*domain.DragEvent
	hovers       []*domain.DragEvent
	presses      int
}

// z1 spans x in [0,100), z2 spans x in [100,200), z3 spans x in [200,300); all are 100 tall.
func newHarness(t *testing.T, opts ...drag.Option) *harness {
	t.Helper()
	store, err := layout.New([]domain.ZoneDescriptor{
		{ID: "z1", Width: domain.TokenWidth(domain.WidthMedium), Components: []string{"a", "b"}},
		{ID: "z2", Width: domain.TokenWidth(domain.WidthMedium)},
		{ID: "z3", Width: domain.TokenWidth(domain.WidthMedium)},
	})
	require.NoError(t, err)

	h := &harness{
		store:  store,
		hits:   hittest.New(),
		bridge: bridge.New(),
		timer:  activation.NewManual(),
	}
	h.hits.Register(domain.Region{ID: "z1", Bounds: domain.Rect{X: 0, Y: 0, Width: 100, Height: 100}})
	h.hits.Register(domain.Region{ID: "z2", Bounds: domain.Rect{X: 100, Y: 0, Width: 100, Height: 100}})
	h.hits.Register(domain.Region{ID: "z3", Bounds: domain.Rect{X: 200, Y: 0, Width: 100, Height: 100}})
	store.Subscribe(func(*domain.LayoutEvent) { h.layoutEvents++ })

	hooks := domain.LifecycleHooks{
		OnPressStart:  func(*domain.DragEvent) { h.presses++ },
		OnDragStart:   func(e *domain.DragEvent) { h.starts = append(h.starts, e) },
		OnHoverChange: func(e *domain.DragEvent) { h.hovers = append(h.hovers, e) },
		OnDragEnd:     func(e *domain.DragEvent) { h.ends = append(h.ends, e) },
	}
	all := append([]drag.Option{drag.WithTimer(h.timer), drag.WithHooks(hooks)}, opts...)
	h.m = drag.New(store, h.hits, h.bridge, all...)
	return h
}

func (h *harness) move(x, y float64) {
	h.bridge.Dispatch(bridge.PointerEvent{Kind: bridge.PointerMove, Point: domain.Point{X: x, Y: y}})
}

func (h *harness) up(x, y float64) {
	h.bridge.Dispatch(bridge.PointerEvent{Kind: bridge.PointerUp, Point: domain.Point{X: x, Y: y}})
}

func grabA() domain.Grab {
	return domain.Grab{
		ComponentID: "a",
		ZoneID:      "z1",
		Pointer:     domain.Point{X: 15, Y: 12},
		Origin:      domain.Point{X: 10, Y: 10},
	}
}

func (h *harness) assertIdle(t *testing.T) {
	t.Helper()
	assert.Equal(t, domain.StateIdle, h.m.State())
	assert.False(t, h.bridge.Active(), "no listener may survive idle")
	assert.Zero(t, h.timer.Pending(), "no timer may survive idle")
}

func TestImmediate_DragAndCommit(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.m.PointerDown(grabA()))
	assert.Equal(t, domain.StateDragging, h.m.State())
	require.Len(t, h.starts, 1)
	assert.Equal(t, "z1", h.starts[0].Session.HoveredZone)

	h.move(150, 50)
	s, ok := h.m.Session()
	require.True(t, ok)
	assert.Equal(t, "z2", s.HoveredZone)
	assert.Equal(t, domain.Point{X: 145, Y: 48}, s.PreviewOrigin(), "preview keeps the grab offset")
	require.Len(t, h.hovers, 1)

	h.up(150, 50)
	h.assertIdle(t)
	snap := h.store.Snapshot()
	assert.Equal(t, []string{"b"}, snap.Zones["z1"].Components)
	assert.Equal(t, []string{"a"}, snap.Zones["z2"].Components)
	assert.Equal(t, 1, h.layoutEvents)
	require.Len(t, h.ends, 1)
	assert.Equal(t, domain.OutcomeCommitted, h.ends[0].Outcome)
}

func TestImmediate_DropOnSourceIsNoop(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.move(150, 50)
	h.move(40, 40)
	h.up(40, 40)

	h.assertIdle(t)
	assert.Zero(t, h.layoutEvents)
	assert.Equal(t, domain.OutcomeNoop, h.ends[0].Outcome)
}

func TestDrop_OutsideEveryZoneIsNoop(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.move(500, 500)

	s, _ := h.m.Session()
	assert.False(t, s.Hovering)

	h.up(500, 500)
	h.assertIdle(t)
	assert.Zero(t, h.layoutEvents)
	assert.Equal(t, []string{"a", "b"}, h.store.Snapshot().Zones["z1"].Components)
	assert.Equal(t, domain.OutcomeNoop, h.ends[0].Outcome)
}

func TestMoveAfterUpIsIgnored(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.up(150, 50)
	h.move(40, 40)
	h.up(40, 40)

	assert.Equal(t, []string{"a"}, h.store.Snapshot().Zones["z2"].Components)
	assert.Len(t, h.ends, 1)
}

func TestSecondPointerDownIgnored(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))

	second := grabA()
	second.ComponentID = "b"
	assert.False(t, h.m.PointerDown(second))

	s, _ := h.m.Session()
	assert.Equal(t, "a", s.ComponentID)
}

func TestPointerDownValidation(t *testing.T) {
	reg := registry.NewRegistry(domain.ComponentDescriptor{ID: "a"})
	h := newHarness(t, drag.WithRegistry(reg))

	tests := []struct {
		name string
		grab domain.Grab
	}{
		{"unknown zone", domain.Grab{ComponentID: "a", ZoneID: "nope"}},
		{"component not in zone", domain.Grab{ComponentID: "a", ZoneID: "z2"}},
		{"component not registered", domain.Grab{ComponentID: "b", ZoneID: "z1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.m.PointerDown(tt.grab))
			h.assertIdle(t)
		})
	}
	assert.True(t, h.m.PointerDown(grabA()))
}

// Release at 900ms of a 1000ms long-press.
func TestDelayed_EarlyReleaseCancels(t *testing.T) {
	h := newHarness(t, drag.WithPolicy(domain.Delayed(time.Second)))

	require.True(t, h.m.PointerDown(grabA()))
	assert.Equal(t, domain.StatePressing, h.m.State())
	assert.Equal(t, 1, h.presses)
	assert.True(t, h.bridge.Active(), "pressing tracks moves")

	h.timer.Advance(900 * time.Millisecond)
	h.move(150, 50)
	h.up(150, 50)

	h.assertIdle(t)
	assert.Zero(t, h.layoutEvents)
	assert.Empty(t, h.starts)
	assert.Equal(t, []string{"a", "b"}, h.store.Snapshot().Zones["z1"].Components)
	require.Len(t, h.ends, 1)
	assert.Equal(t, domain.OutcomeCancelled, h.ends[0].Outcome)

	h.timer.Advance(time.Second)
	assert.Equal(t, domain.StateIdle, h.m.State())
}

func TestDelayed_ActivatesAndCommits(t *testing.T) {
	acks := 0
	h := newHarness(t,
		drag.WithPolicy(domain.Delayed(time.Second)),
		drag.WithAcknowledger(ports.AcknowledgerFunc(func() error {
			acks++
			return errors.New("no haptics here")
		})),
	)

	require.True(t, h.m.PointerDown(grabA()))
	h.move(150, 50)
	assert.Empty(t, h.hovers, "no hit testing while pressing")

	h.timer.Advance(time.Second)
	assert.Equal(t, domain.StateDragging, h.m.State())
	assert.Equal(t, 1, acks)
	require.Len(t, h.starts, 1)
	assert.Equal(t, "z2", h.starts[0].Session.HoveredZone, "activation hit-tests the live pointer")

	h.up(150, 50)
	h.assertIdle(t)
	assert.Equal(t, []string{"a"}, h.store.Snapshot().Zones["z2"].Components)
}

func TestDelayed_DefaultDelay(t *testing.T) {
	h := newHarness(t, drag.WithPolicy(domain.ActivationPolicy{Mode: domain.ActivationDelayed}))
	assert.Equal(t, domain.DefaultActivationDelay, h.m.Policy().Delay)

	require.True(t, h.m.PointerDown(grabA()))
	h.timer.Advance(999 * time.Millisecond)
	assert.Equal(t, domain.StatePressing, h.m.State())
	h.timer.Advance(time.Millisecond)
	assert.Equal(t, domain.StateDragging, h.m.State())
}

func TestDelayed_ToleranceCancelsPress(t *testing.T) {
	h := newHarness(t, drag.WithPolicy(domain.Delayed(time.Second)), drag.WithTolerance(5))

	require.True(t, h.m.PointerDown(grabA()))
	h.move(17, 14)
	assert.Equal(t, domain.StatePressing, h.m.State(), "small jitter is tolerated")

	h.move(40, 12)
	h.assertIdle(t)
	assert.Equal(t, domain.OutcomeCancelled, h.ends[0].Outcome)
}

// A timer callback captured before a cancel must not revive the gesture.
type leakyTimer struct {
	fires []func()
}

func (l *leakyTimer) Arm(_ time.Duration, fire func()) activation.Handle {
	l.fires = append(l.fires, fire)
	return activation.Handle(len(l.fires))
}
func (l *leakyTimer) Cancel(activation.Handle) {}

func (l *leakyTimer) Pending() int { return 0 }

func TestDelayed_StaleFireIgnored(t *testing.T) {
	store, err := layout.New([]domain.ZoneDescriptor{
		{ID: "z1", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"a", "b"}},
	})
	require.NoError(t, err)
	timer := &leakyTimer{}
	m := drag.New(store, hittest.New(), bridge.New(),
		drag.WithPolicy(domain.Delayed(time.Second)), drag.WithTimer(timer))

	require.True(t, m.PointerDown(grabA()))
	require.True(t, m.Teardown())

	second := grabA()
	second.ComponentID = "b"
	require.True(t, m.PointerDown(second))

	timer.fires[0]()
	assert.Equal(t, domain.StatePressing, m.State(), "stale fire must not activate the new session")

	timer.fires[1]()
	assert.Equal(t, domain.StateDragging, m.State())
}

func TestTeardown(t *testing.T) {
	h := newHarness(t, drag.WithPolicy(domain.Delayed(time.Second)))
	assert.False(t, h.m.Teardown(), "nothing to tear down")

	require.True(t, h.m.PointerDown(grabA()))
	require.True(t, h.m.Teardown())
	h.assertIdle(t)
	assert.Equal(t, domain.OutcomeCancelled, h.ends[0].Outcome)
	assert.Equal(t, domain.StateIdle, h.ends[0].Session.State)

	h.up(150, 50)
	assert.Len(t, h.ends, 1)
}

func TestCommitFailsWhenHoveredZoneRemoved(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.move(150, 50)

	require.NoError(t, h.store.RemoveZone("z2"))
	h.up(150, 50)

	h.assertIdle(t)
	require.Len(t, h.ends, 1)
	assert.Equal(t, domain.OutcomeCancelled, h.ends[0].Outcome)
	assert.ErrorIs(t, h.ends[0].Err, domain.ErrUnknownZone)
}

func TestDrop_SourceZoneRemovedMidDragIsNoop(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.move(250, 50)

	require.NoError(t, h.store.RemoveZone("z1"))
	events := h.layoutEvents
	h.up(250, 50)

	h.assertIdle(t)
	require.Len(t, h.ends, 1)
	assert.Equal(t, domain.OutcomeNoop, h.ends[0].Outcome)
	assert.NoError(t, h.ends[0].Err)
	assert.Equal(t, events, h.layoutEvents, "the drop must not mutate the layout")
	snap := h.store.Snapshot()
	assert.Equal(t, []string{"a", "b"}, snap.Zones["z2"].Components)
	assert.Empty(t, snap.Zones["z3"].Components)
}

func TestDrop_ComponentRelocatedMidDragIsNoop(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.m.PointerDown(grabA()))
	h.move(250, 50)

	require.NoError(t, h.store.Move("a", "z1", "z2"))
	events := h.layoutEvents
	h.up(250, 50)

	h.assertIdle(t)
	require.Len(t, h.ends, 1)
	assert.Equal(t, domain.OutcomeNoop, h.ends[0].Outcome)
	assert.Equal(t, events, h.layoutEvents)
	snap := h.store.Snapshot()
	assert.Equal(t, []string{"a"}, snap.Zones["z2"].Components)
	assert.Empty(t, snap.Zones["z3"].Components)
}

func TestHooksMayQueryMachine(t *testing.T) {
	var m *drag.Machine
	var stateAtEnd domain.SessionState
	h := newHarness(t, drag.WithHooks(domain.LifecycleHooks{
		OnDragEnd: func(*domain.DragEvent) { stateAtEnd = m.State() },
	}))
	m = h.m

	require.True(t, m.PointerDown(grabA()))
	h.up(150, 50)
	assert.Equal(t, domain.StateIdle, stateAtEnd)
}
