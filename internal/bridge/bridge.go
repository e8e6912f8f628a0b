// Package bridge forwards process-wide pointer move/up events to the one active drag session.
package bridge

import (
	"errors"
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// ErrAlreadySubscribed is returned when a second listener tries to subscribe.
var ErrAlreadySubscribed = errors.New("pointer bridge already has a subscriber")

// PointerKind distinguishes the forwarded events.
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerUp
)

func (k PointerKind) String() string {
	switch k {
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent is one forwarded pointer sample.
type PointerEvent struct {
	Kind  PointerKind
	Point domain.Point
}

// Listener receives forwarded events.
type Listener func(PointerEvent)

// Bridge holds at most one subscription.
type Bridge struct {
	mu     sync.Mutex
	active *Subscription
}

// New returns a bridge with no subscriber.
func New() *Bridge {
	return &Bridge{}
}

// Subscription is the scoped resource held by a session.
type Subscription struct {
	bridge   *Bridge
	listener Listener
	closed   bool
}

// Subscribe installs fn as the only listener.
func (b *Bridge) Subscribe(fn Listener) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil {
		return nil, ErrAlreadySubscribed
	}
	sub := &Subscription{bridge: b, listener: fn}
	b.active = sub
	return sub, nil
}

// Close detaches the listener synchronously: once Close returns, no Dispatch
// started afterwards reaches it. A Dispatch that read the subscription before
// Close may still deliver one event, so listeners bound to a session must check
// that the session is still current. Close is idempotent.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	b := s.bridge
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if b.active == s {
		b.active = nil
	}
}

// Active reports whether a listener is installed.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// Dispatch forwards evt to the current listener and reports whether one existed.
// The listener runs outside the bridge lock so it may close its own subscription.
func (b *Bridge) Dispatch(evt PointerEvent) bool {
	b.mu.Lock()
	sub := b.active
	b.mu.Unlock()
	if sub == nil {
		return false
	}
	sub.listener(evt)
	return true
}
