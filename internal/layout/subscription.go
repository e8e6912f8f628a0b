package layout

import (
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// Subscription is returned by Subscribe and can remove its listener.
type Subscription struct {
	store *Store
	id    uint64
	once  sync.Once
}

// Remove detaches the listener. Calling it more than once is harmless.
func (sub *Subscription) Remove() {
	if sub == nil || sub.store == nil {
		return
	}
	sub.once.Do(func() {
		s := sub.store
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, entry := range s.subs {
			if entry.id == sub.id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	})
}

// Subscribe registers a layout-changed listener.
func (s *Store) Subscribe(fn Listener) *Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	s.subs = append(s.subs, subscriber{id: s.nextID, fn: fn})
	return &Subscription{store: s, id: s.nextID}
}

func (s *Store) notify(evt *domain.LayoutEvent) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		s.safeCall(sub.fn, evt)
	}
}

// safeCall isolates listeners from each other.
func (s *Store) safeCall(fn Listener, evt *domain.LayoutEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("layout listener panicked", "op", evt.Op, "panic", r)
		}
	}()
	fn(evt)
}
