// Package drag implements the drag session state machine.
//
// One Machine owns at most one in-flight session. Pointer-down starts it, the
// pointer bridge feeds it moves and the release, and the activation timer gates
// the long-press policy. Every inbound event is processed to completion under the
// machine lock; hooks and the layout commit run after the lock is released.
package drag

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dashgrid/internal/activation"
	"github.com/aretw0/dashgrid/internal/bridge"
	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
	"github.com/google/uuid"
)

// Layout is the part of the layout store the machine needs.
type Layout interface {
	Contains(zoneID, componentID string) bool
	// Transfer moves the component and reports whether the layout changed.
	Transfer(componentID, fromZoneID, toZoneID string) (bool, error)
}

// HitTester resolves a pointer position to a zone.
type HitTester interface {
	HitTest(p domain.Point) (string, bool)
}

// Machine is the drag state machine.
type Machine struct {
	mu      sync.Mutex
	session *session

	layout    Layout
	hits      HitTester
	bridge    *bridge.Bridge
	timer     activation.Timer
	policy    domain.ActivationPolicy
	tolerance float64
	registry  ports.ComponentRegistry
	ack       ports.Acknowledger
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type session struct {
	id          string
	state       domain.SessionState
	componentID string
	source      string
	offset      domain.Point
	pressAt     domain.Point
	pointer     domain.Point
	hovered     string
	hovering    bool
	startedAt   time.Time
	timer       activation.Handle
	sub         *bridge.Subscription
}

// Option configures a Machine.
type Option func(*Machine)

// WithPolicy sets the activation policy. Immediate is the default.
func WithPolicy(p domain.ActivationPolicy) Option {
	return func(m *Machine) {
		m.policy = p
	}
}

// WithTolerance cancels a long-press when the pointer wanders farther than d
// before activation. Zero disables the check.
func WithTolerance(d float64) Option {
	return func(m *Machine) {
		if d > 0 {
			m.tolerance = d
		}
	}
}

// WithTimer sets the activation timer. A real-time Clock is used by default.
func WithTimer(t activation.Timer) Option {
	return func(m *Machine) {
		if t != nil {
			m.timer = t
		}
	}
}

// WithRegistry makes pointer-down ignore components the registry cannot resolve.
func WithRegistry(r ports.ComponentRegistry) Option {
	return func(m *Machine) {
		m.registry = r
	}
}

// WithAcknowledger sets the long-press acknowledgment signal.
func WithAcknowledger(a ports.Acknowledger) Option {
	return func(m *Machine) {
		m.ack = a
	}
}

// WithHooks sets lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates an idle machine.
func New(layout Layout, hits HitTester, b *bridge.Bridge, opts ...Option) *Machine {
	m := &Machine{
		layout: layout,
		hits:   hits,
		bridge: b,
		policy: domain.Immediate(),
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.timer == nil {
		m.timer = activation.NewClock()
	}
	if m.policy.IsDelayed() && m.policy.Delay <= 0 {
		m.policy.Delay = domain.DefaultActivationDelay
	}
	return m
}

// Policy returns the configured activation policy.
func (m *Machine) Policy() domain.ActivationPolicy {
	return m.policy
}

// State returns the current lifecycle state.
func (m *Machine) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return domain.StateIdle
	}
	return m.session.state
}

// Session returns a copy of the in-flight session.
func (m *Machine) Session() (domain.SessionSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return domain.SessionSnapshot{}, false
	}
	return m.session.snapshot(), true
}

// PointerDown starts a gesture on a drag handle. It returns false when the
// gesture was ignored: another session is in flight, the source zone does not
// hold the component, or the registry does not know it.
func (m *Machine) PointerDown(g domain.Grab) bool {
	m.mu.Lock()
	if m.session != nil {
		m.mu.Unlock()
		m.logger.Debug("pointer-down ignored, session in flight", "component_id", g.ComponentID)
		return false
	}
	if !m.layout.Contains(g.ZoneID, g.ComponentID) {
		m.mu.Unlock()
		m.logger.Debug("pointer-down ignored, component not in zone", "component_id", g.ComponentID, "zone_id", g.ZoneID)
		return false
	}
	if m.registry != nil {
		if _, ok := m.registry.Resolve(g.ComponentID); !ok {
			m.mu.Unlock()
			m.logger.Debug("pointer-down ignored, component not registered", "component_id", g.ComponentID)
			return false
		}
	}

	s := &session{
		id:          m.newID(),
		componentID: g.ComponentID,
		source:      g.ZoneID,
		offset:      g.Pointer.Sub(g.Origin),
		pressAt:     g.Pointer,
		pointer:     g.Pointer,
		startedAt:   m.now(),
	}
	sub, err := m.bridge.Subscribe(func(evt bridge.PointerEvent) { m.onPointer(s, evt) })
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("pointer-down ignored, bridge busy", "component_id", g.ComponentID, "err", err)
		return false
	}
	s.sub = sub
	m.session = s

	var evt *domain.DragEvent
	var hook func(*domain.DragEvent)
	if m.policy.IsDelayed() {
		s.state = domain.StatePressing
		s.timer = m.timer.Arm(m.policy.Delay, func() { m.onTimer(s) })
		evt, hook = m.eventLocked(domain.EventPressStart, s), m.hooks.OnPressStart
	} else {
		s.state = domain.StateDragging
		s.hovered, s.hovering = m.hits.HitTest(s.pointer)
		evt, hook = m.eventLocked(domain.EventDragStart, s), m.hooks.OnDragStart
	}
	m.mu.Unlock()

	m.logger.Debug("gesture started", "session_id", s.id, "state", evt.Session.State,
		"component_id", s.componentID, "zone_id", s.source)
	emit(hook, evt)
	return true
}

// Teardown cancels the in-flight session, if any, from whatever state it is in.
func (m *Machine) Teardown() bool {
	m.mu.Lock()
	s := m.session
	if s == nil {
		m.mu.Unlock()
		return false
	}
	evt := m.endLocked(s, domain.OutcomeCancelled)
	m.mu.Unlock()

	m.logger.Debug("session torn down", "session_id", s.id)
	emit(m.hooks.OnDragEnd, evt)
	return true
}

// onPointer receives bridge events for session s. An event delivered after s
// ended, e.g. one racing the subscription's Close, is dropped so it can never
// reach a later session.
func (m *Machine) onPointer(s *session, evt bridge.PointerEvent) {
	switch evt.Kind {
	case bridge.PointerMove:
		m.handleMove(s, evt.Point)
	case bridge.PointerUp:
		m.handleUp(s, evt.Point)
	}
}

func (m *Machine) handleMove(s *session, p domain.Point) {
	m.mu.Lock()
	if m.session != s {
		m.mu.Unlock()
		return
	}
	s.pointer = p

	switch s.state {
	case domain.StatePressing:
		if m.tolerance > 0 && p.DistanceSq(s.pressAt) > m.tolerance*m.tolerance {
			evt := m.endLocked(s, domain.OutcomeCancelled)
			m.mu.Unlock()
			m.logger.Debug("long-press cancelled, pointer moved", "session_id", s.id)
			emit(m.hooks.OnDragEnd, evt)
			return
		}
		m.mu.Unlock()
	case domain.StateDragging:
		evt := m.rehitLocked(s)
		m.mu.Unlock()
		if evt != nil {
			emit(m.hooks.OnHoverChange, evt)
		}
	default:
		m.mu.Unlock()
	}
}

func (m *Machine) handleUp(s *session, p domain.Point) {
	m.mu.Lock()
	if m.session != s {
		m.mu.Unlock()
		return
	}
	s.pointer = p

	if s.state == domain.StatePressing {
		evt := m.endLocked(s, domain.OutcomeCancelled)
		m.mu.Unlock()
		m.logger.Debug("released before activation", "session_id", s.id)
		emit(m.hooks.OnDragEnd, evt)
		return
	}

	hoverEvt := m.rehitLocked(s)
	target, commit := s.hovered, s.hovering && s.hovered != s.source
	outcome := domain.OutcomeNoop
	if commit {
		outcome = domain.OutcomeCommitted
	}
	evt := m.endLocked(s, outcome)
	m.mu.Unlock()

	if hoverEvt != nil {
		emit(m.hooks.OnHoverChange, hoverEvt)
	}
	if commit {
		moved, err := m.layout.Transfer(s.componentID, s.source, target)
		switch {
		case err != nil:
			evt.Outcome = domain.OutcomeCancelled
			evt.Err = err
			m.logger.Warn("drop commit failed", "session_id", s.id, "component_id", s.componentID,
				"zone_id", target, "err", err)
		case !moved:
			// The layout changed under the gesture and the component left its source zone.
			evt.Outcome = domain.OutcomeNoop
			m.logger.Debug("drop left layout unchanged", "session_id", s.id, "component_id", s.componentID,
				"zone_id", target)
		}
	}
	m.logger.Debug("session ended", "session_id", s.id, "outcome", evt.Outcome, "zone_id", target)
	emit(m.hooks.OnDragEnd, evt)
}

// onTimer activates a long-press. Fires for a session that is gone or already
// past pressing are stale and dropped.
func (m *Machine) onTimer(s *session) {
	m.mu.Lock()
	if m.session != s || s.state != domain.StatePressing {
		m.mu.Unlock()
		m.logger.Debug("stale activation fire dropped", "session_id", s.id)
		return
	}
	s.state = domain.StateDragging
	s.timer = 0
	s.hovered, s.hovering = m.hits.HitTest(s.pointer)
	evt := m.eventLocked(domain.EventDragStart, s)
	m.mu.Unlock()

	if m.ack != nil {
		if err := m.ack.Acknowledge(); err != nil {
			m.logger.Debug("acknowledgment failed", "session_id", s.id, "err", err)
		}
	}
	m.logger.Debug("long-press activated", "session_id", s.id, "component_id", s.componentID)
	emit(m.hooks.OnDragStart, evt)
}

// rehitLocked refreshes the hovered zone and returns a hover-change event if it changed.
func (m *Machine) rehitLocked(s *session) *domain.DragEvent {
	zone, ok := m.hits.HitTest(s.pointer)
	if zone == s.hovered && ok == s.hovering {
		return nil
	}
	s.hovered, s.hovering = zone, ok
	return m.eventLocked(domain.EventHoverChange, s)
}

// endLocked releases every resource the session holds and returns the machine to idle.
func (m *Machine) endLocked(s *session, outcome domain.DropOutcome) *domain.DragEvent {
	if s.timer != 0 {
		m.timer.Cancel(s.timer)
		s.timer = 0
	}
	s.sub.Close()
	m.session = nil

	evt := m.eventLocked(domain.EventDragEnd, s)
	evt.Outcome = outcome
	evt.Session.State = domain.StateIdle
	return evt
}

func (m *Machine) eventLocked(t domain.DragEventType, s *session) *domain.DragEvent {
	return &domain.DragEvent{
		Timestamp: m.now(),
		Type:      t,
		Session:   s.snapshot(),
	}
}

func (s *session) snapshot() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		ID:           s.id,
		State:        s.state,
		ComponentID:  s.componentID,
		SourceZoneID: s.source,
		GrabOffset:   s.offset,
		Pointer:      s.pointer,
		HoveredZone:  s.hovered,
		Hovering:     s.hovering,
		StartedAt:    s.startedAt,
	}
}

func emit(hook func(*domain.DragEvent), evt *domain.DragEvent) {
	if hook != nil {
		hook(evt)
	}
}
