package dsl

import (
	"fmt"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/registry"
)

// Builder manages the layout construction.
type Builder struct {
	order []string
	zones map[string]*ZoneBuilder
}

// New creates a new layout builder.
func New() *Builder {
	return &Builder{
		zones: make(map[string]*ZoneBuilder),
	}
}

// Add creates a new zone at the end of the layout.
// If the zone already exists, it returns the existing builder.
func (b *Builder) Add(id string) *ZoneBuilder {
	if zb, ok := b.zones[id]; ok {
		return zb
	}
	zb := &ZoneBuilder{
		zone:    domain.ZoneDescriptor{ID: id, Width: domain.TokenWidth(domain.WidthMedium)},
		builder: b,
	}
	b.zones[id] = zb
	b.order = append(b.order, id)
	return zb
}

// Build returns the zone descriptors in declaration order.
// It fails on the same rules the engine enforces at construction.
func (b *Builder) Build() ([]domain.ZoneDescriptor, error) {
	zones := make([]domain.Zone, 0, len(b.order))
	descs := make([]domain.ZoneDescriptor, 0, len(b.order))
	for _, id := range b.order {
		zb := b.zones[id]
		if zb.err != nil {
			return nil, fmt.Errorf("zone %q: %w", id, zb.err)
		}
		zones = append(zones, domain.Zone{ID: id, Width: zb.zone.Width, Components: zb.zone.Components})
		descs = append(descs, zb.zone)
	}
	if err := domain.NewLayoutSnapshot(zones).Validate(); err != nil {
		return nil, fmt.Errorf("failed to build layout: %w", err)
	}
	return descs, nil
}

// Components returns every component declared with a descriptor, in declaration order.
func (b *Builder) Components() []domain.ComponentDescriptor {
	var out []domain.ComponentDescriptor
	for _, id := range b.order {
		out = append(out, b.zones[id].descriptors...)
	}
	return out
}

// Engine builds the layout and creates an engine for it. When any component was
// declared with a descriptor, the engine gets a registry holding all of them,
// and components declared by id alone are registered with a bare descriptor.
func (b *Builder) Engine(opts ...dashgrid.Option) (*dashgrid.Engine, error) {
	zones, err := b.Build()
	if err != nil {
		return nil, err
	}
	if described := b.Components(); len(described) > 0 {
		reg := registry.NewRegistry(described...)
		for _, z := range zones {
			for _, c := range z.Components {
				if _, ok := reg.Resolve(c); !ok {
					reg.Register(domain.ComponentDescriptor{ID: c})
				}
			}
		}
		opts = append([]dashgrid.Option{dashgrid.WithRegistry(reg)}, opts...)
	}
	return dashgrid.New(zones, opts...)
}
