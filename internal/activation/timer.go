// Package activation provides the single-shot, cancelable delay behind long-press drags.
package activation

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies one armed delay. The zero Handle is never returned by Arm.
type Handle uint64

// Timer arms and cancels single-shot delays.
// Cancel is idempotent: canceling a fired or already canceled handle does nothing.
type Timer interface {
	Arm(d time.Duration, fire func()) Handle
	Cancel(h Handle)
	Pending() int
}

// Clock is a Timer backed by time.AfterFunc. Fire callbacks run on their own goroutine.
type Clock struct {
	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

// NewClock returns a real-time Timer.
func NewClock() *Clock {
	return &Clock{timers: make(map[Handle]*time.Timer)}
}

// Arm schedules fire after d.
func (c *Clock) Arm(d time.Duration, fire func()) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := c.next
	c.timers[h] = time.AfterFunc(d, func() {
		c.mu.Lock()
		_, live := c.timers[h]
		delete(c.timers, h)
		c.mu.Unlock()
		if live {
			fire()
		}
	})
	return h
}

// Cancel stops the delay if it has not fired yet.
// A callback that already started may still run; callers that care must check
// the handle they armed against the one that fired.
func (c *Clock) Cancel(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[h]; ok {
		t.Stop()
		delete(c.timers, h)
	}
}

// Pending returns the number of armed, unfired delays.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Manual is a Timer driven by virtual time. Nothing fires until Advance is called,
// and due callbacks run synchronously inside Advance in deadline order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	next    Handle
	pending map[Handle]manualEntry
}

type manualEntry struct {
	deadline time.Duration
	fire     func()
}

// NewManual returns a virtual-time Timer starting at zero.
func NewManual() *Manual {
	return &Manual{pending: make(map[Handle]manualEntry)}
}

// Arm schedules fire at now+d.
func (m *Manual) Arm(d time.Duration, fire func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.pending[m.next] = manualEntry{deadline: m.now + d, fire: fire}
	return m.next
}

// Cancel drops the delay if it has not fired.
func (m *Manual) Cancel(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, h)
}

// Pending returns the number of armed, unfired delays.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Elapsed returns the virtual time since creation.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves virtual time forward by d and runs every callback that became due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	type due struct {
		h Handle
		e manualEntry
	}
	var fired []due
	for h, e := range m.pending {
		if e.deadline <= m.now {
			fired = append(fired, due{h, e})
			delete(m.pending, h)
		}
	}
	m.mu.Unlock()

	sort.Slice(fired, func(i, j int) bool {
		if fired[i].e.deadline != fired[j].e.deadline {
			return fired[i].e.deadline < fired[j].e.deadline
		}
		return fired[i].h < fired[j].h
	})
	for _, f := range fired {
		f.e.fire()
	}
}
