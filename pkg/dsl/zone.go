package dsl

import (
	"github.com/aretw0/dashgrid/pkg/domain"
)

// ZoneBuilder provides a fluent API for configuring a zone.
type ZoneBuilder struct {
	zone        domain.ZoneDescriptor
	descriptors []domain.ComponentDescriptor
	builder     *Builder
	err         error
}

// Width sets the zone width. The last width set wins; an invalid one fails Build.
func (zb *ZoneBuilder) Width(w domain.Width) *ZoneBuilder {
	zb.err = w.Validate()
	zb.zone.Width = w
	return zb
}

// Small sets the width to the "small" token.
func (zb *ZoneBuilder) Small() *ZoneBuilder { return zb.Width(domain.TokenWidth(domain.WidthSmall)) }

// Medium sets the width to the "medium" token. It is the default.
func (zb *ZoneBuilder) Medium() *ZoneBuilder { return zb.Width(domain.TokenWidth(domain.WidthMedium)) }

// Large sets the width to the "large" token.
func (zb *ZoneBuilder) Large() *ZoneBuilder { return zb.Width(domain.TokenWidth(domain.WidthLarge)) }

// Full sets the width to the "full" token.
func (zb *ZoneBuilder) Full() *ZoneBuilder { return zb.Width(domain.TokenWidth(domain.WidthFull)) }

// Custom sets a numeric width.
func (zb *ZoneBuilder) Custom(size float64) *ZoneBuilder { return zb.Width(domain.CustomWidth(size)) }

// Holds appends component ids to the zone.
func (zb *ZoneBuilder) Holds(componentIDs ...string) *ZoneBuilder {
	zb.zone.Components = append(zb.zone.Components, componentIDs...)
	return zb
}

// Component appends a described component to the zone.
func (zb *ZoneBuilder) Component(desc domain.ComponentDescriptor) *ZoneBuilder {
	zb.descriptors = append(zb.descriptors, desc)
	return zb.Holds(desc.ID)
}

// Add starts the next zone, for chaining whole layouts in one expression.
func (zb *ZoneBuilder) Add(id string) *ZoneBuilder {
	return zb.builder.Add(id)
}
