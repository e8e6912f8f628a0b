package domain

import (
	"fmt"
	"slices"
)

// Zone is a named container of component ids.
// Components keep arrival order; there is no explicit reordering.
type Zone struct {
	ID         string   `json:"id"`
	Width      Width    `json:"width"`
	Components []string `json:"components"`
}

// ZoneDescriptor describes one zone of the initial configuration.
type ZoneDescriptor struct {
	ID         string   `json:"id" yaml:"id" mapstructure:"id"`
	Width      Width    `json:"width" yaml:"width" mapstructure:"width"`
	Components []string `json:"components,omitempty" yaml:"components,omitempty" mapstructure:"components"`
}

// ZoneState is the per-zone payload of a LayoutSnapshot.
type ZoneState struct {
	Width      Width    `json:"width"`
	Components []string `json:"components"`
}

// LayoutSnapshot is an immutable copy of the full layout map.
// Order lists zone ids in iteration order; it always matches the keys of Zones.
type LayoutSnapshot struct {
	Order []string             `json:"order"`
	Zones map[string]ZoneState `json:"zones"`
}

// NewLayoutSnapshot builds a snapshot from zones in iteration order.
func NewLayoutSnapshot(zones []Zone) LayoutSnapshot {
	snap := LayoutSnapshot{
		Order: make([]string, 0, len(zones)),
		Zones: make(map[string]ZoneState, len(zones)),
	}
	for _, z := range zones {
		snap.Order = append(snap.Order, z.ID)
		snap.Zones[z.ID] = ZoneState{
			Width:      z.Width,
			Components: append([]string{}, z.Components...),
		}
	}
	return snap
}

// Clone returns a deep copy.
func (s LayoutSnapshot) Clone() LayoutSnapshot {
	out := LayoutSnapshot{
		Order: append([]string{}, s.Order...),
		Zones: make(map[string]ZoneState, len(s.Zones)),
	}
	for id, z := range s.Zones {
		out.Zones[id] = ZoneState{
			Width:      z.Width,
			Components: append([]string{}, z.Components...),
		}
	}
	return out
}

// Equal reports whether two snapshots hold the same zones, widths and component order.
func (s LayoutSnapshot) Equal(other LayoutSnapshot) bool {
	if !slices.Equal(s.Order, other.Order) || len(s.Zones) != len(other.Zones) {
		return false
	}
	for id, z := range s.Zones {
		o, ok := other.Zones[id]
		if !ok || z.Width != o.Width || !slices.Equal(z.Components, o.Components) {
			return false
		}
	}
	return true
}

// ComponentCount returns the number of component ids across all zones.
func (s LayoutSnapshot) ComponentCount() int {
	n := 0
	for _, z := range s.Zones {
		n += len(z.Components)
	}
	return n
}

// Locate returns the zone holding componentID.
func (s LayoutSnapshot) Locate(componentID string) (string, bool) {
	for _, id := range s.Order {
		if slices.Contains(s.Zones[id].Components, componentID) {
			return id, true
		}
	}
	return "", false
}

// Descriptors converts the snapshot back into construction input, preserving order.
func (s LayoutSnapshot) Descriptors() []ZoneDescriptor {
	out := make([]ZoneDescriptor, 0, len(s.Order))
	for _, id := range s.Order {
		z := s.Zones[id]
		out = append(out, ZoneDescriptor{
			ID:         id,
			Width:      z.Width,
			Components: append([]string{}, z.Components...),
		})
	}
	return out
}

// Validate checks the rules every layout obeys: Order and Zones name the same
// zones exactly once, widths are valid, and no component sits in two zones.
func (s LayoutSnapshot) Validate() error {
	if len(s.Order) != len(s.Zones) {
		return fmt.Errorf("%w: order lists %d zones, map holds %d", ErrInvalidSnapshot, len(s.Order), len(s.Zones))
	}
	seenZones := make(map[string]bool, len(s.Order))
	owner := make(map[string]string)
	for _, id := range s.Order {
		if seenZones[id] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidSnapshot, ErrDuplicateZoneID, id)
		}
		seenZones[id] = true
		z, ok := s.Zones[id]
		if !ok {
			return fmt.Errorf("%w: zone %q is ordered but missing", ErrInvalidSnapshot, id)
		}
		if err := z.Width.Validate(); err != nil {
			return fmt.Errorf("%w: zone %q: %w", ErrInvalidSnapshot, id, err)
		}
		for _, c := range z.Components {
			if prev, ok := owner[c]; ok {
				return fmt.Errorf("%w: %w: %q in %q and %q", ErrInvalidSnapshot, ErrComponentPlaced, c, prev, id)
			}
			owner[c] = id
		}
	}
	return nil
}

// ComponentDescriptor is what the external registry knows about a component.
// The engine borrows it for lookups and never mutates it.
type ComponentDescriptor struct {
	ID    string         `json:"id"`
	Kind  string         `json:"kind,omitempty"`
	Title string         `json:"title,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}
