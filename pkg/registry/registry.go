// Package registry provides an in-memory component registry.
package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
)

// Registry manages the known component descriptors.
type Registry struct {
	mu         sync.RWMutex
	components map[string]domain.ComponentDescriptor
}

// Ensure Registry implements ports.ComponentRegistry.
var _ ports.ComponentRegistry = (*Registry)(nil)

// NewRegistry creates a registry pre-populated with the given descriptors.
func NewRegistry(components ...domain.ComponentDescriptor) *Registry {
	r := &Registry{
		components: make(map[string]domain.ComponentDescriptor),
	}
	for _, c := range components {
		r.components[c.ID] = c
	}
	return r
}

// Register adds a component to the registry.
// If a component with the same id exists, it is overwritten.
func (r *Registry) Register(c domain.ComponentDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.ID] = c
}

// Unregister removes a component. Unknown ids are ignored.
func (r *Registry) Unregister(componentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.components, componentID)
}

// Resolve looks up a component by id.
func (r *Registry) Resolve(componentID string) (domain.ComponentDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[componentID]
	return c, ok
}

// IDs returns all registered component ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.components))
	for id := range r.components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
