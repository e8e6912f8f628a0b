// Package hittest resolves pointer coordinates to drop-target zones.
//
// Owners register the current screen bounds of their regions as they mount,
// resize or unmount. The registry never owns zone lifecycle; it is only a lookup
// table refreshed by whoever renders the zones.
package hittest

import (
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
)

// maxDepth bounds parent-chain walks so a cycle cannot hang HitTest.
const maxDepth = 64

type entry struct {
	region domain.Region
	seq    uint64
}

// Registry is a concurrency-safe table of region bounds.
type Registry struct {
	mu      sync.RWMutex
	seq     uint64
	regions map[string]entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{regions: make(map[string]entry)}
}

// Register adds or refreshes a region. Re-registering an existing id moves it on top.
func (r *Registry) Register(region domain.Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.regions[region.ID] = entry{region: region, seq: r.seq}
}

// Unregister removes a region. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regions, id)
}

// UnregisterZone removes every region resolving to zoneID.
func (r *Registry) UnregisterZone(zoneID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.regions {
		if e.region.Zone() == zoneID {
			delete(r.regions, id)
		}
	}
}

// Bounds returns the registered rectangle of a region.
func (r *Registry) Bounds(id string) (domain.Rect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.regions[id]
	return e.region.Bounds, ok
}

// Len returns the number of registered regions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions)
}

// HitTest returns the zone under p. Among all containing regions the deepest
// wins; equal depth goes to the most recently registered one.
func (r *Registry) HitTest(p domain.Point) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best      entry
		bestDepth = -1
	)
	for _, e := range r.regions {
		if e.region.Bounds.Empty() || !e.region.Bounds.Contains(p) {
			continue
		}
		d := r.depthLocked(e.region)
		if d > bestDepth || (d == bestDepth && e.seq > best.seq) {
			best, bestDepth = e, d
		}
	}
	if bestDepth < 0 {
		return "", false
	}
	return best.region.Zone(), true
}

// depthLocked counts registered ancestors. Unknown parents count as root.
func (r *Registry) depthLocked(region domain.Region) int {
	depth := 0
	parent := region.Parent
	for parent != "" && depth < maxDepth {
		e, ok := r.regions[parent]
		if !ok {
			break
		}
		depth++
		parent = e.region.Parent
	}
	return depth
}
