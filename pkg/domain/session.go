package domain

import (
	"fmt"
	"time"
)

// SessionState is the lifecycle state of the drag state machine.
type SessionState string

const (
	StateIdle     SessionState = "idle"     // No session exists
	StatePressing SessionState = "pressing" // Long-press armed, move not started
	StateDragging SessionState = "dragging" // Pointer moves are tracked and hit-tested
)

// DefaultActivationDelay is the long-press duration used when none is configured.
const DefaultActivationDelay = 1000 * time.Millisecond

// ActivationMode selects when a pointer-down becomes a drag.
type ActivationMode string

const (
	ActivationImmediate ActivationMode = "immediate"
	ActivationDelayed   ActivationMode = "delayed"
)

// ActivationPolicy parameterizes the drag state machine.
type ActivationPolicy struct {
	Mode  ActivationMode `json:"mode" yaml:"mode" mapstructure:"mode"`
	Delay time.Duration  `json:"delay,omitempty" yaml:"delay,omitempty" mapstructure:"delay"`
}

// Immediate returns the policy where pointer-down starts dragging at once.
func Immediate() ActivationPolicy {
	return ActivationPolicy{Mode: ActivationImmediate}
}

// Delayed returns the long-press policy. A non-positive delay uses DefaultActivationDelay.
func Delayed(d time.Duration) ActivationPolicy {
	if d <= 0 {
		d = DefaultActivationDelay
	}
	return ActivationPolicy{Mode: ActivationDelayed, Delay: d}
}

// ParseActivationMode accepts "immediate" or "delayed" (alias "long-press").
func ParseActivationMode(s string) (ActivationMode, error) {
	switch s {
	case "", string(ActivationImmediate):
		return ActivationImmediate, nil
	case string(ActivationDelayed), "long-press", "longpress":
		return ActivationDelayed, nil
	default:
		return "", fmt.Errorf("unknown activation mode %q", s)
	}
}

// IsDelayed reports whether pointer-down goes through the pressing state first.
func (p ActivationPolicy) IsDelayed() bool {
	return p.Mode == ActivationDelayed
}

// DropOutcome describes how a session ended.
type DropOutcome string

const (
	OutcomeCommitted DropOutcome = "committed" // Component moved to the hovered zone
	OutcomeNoop      DropOutcome = "noop"      // Released over the source zone, outside every zone, or after the component left its source
	OutcomeCancelled DropOutcome = "cancelled" // Released while pressing, or torn down
)

// Grab is the pointer-down payload: what is grabbed and where.
type Grab struct {
	ComponentID string `json:"component_id"`
	ZoneID      string `json:"zone_id"`
	// Pointer is where the pointer went down.
	Pointer Point `json:"pointer"`
	// Origin is the dragged element's top-left corner at pointer-down.
	Origin Point `json:"origin"`
}

// SessionSnapshot is a read-only copy of the in-flight drag session.
type SessionSnapshot struct {
	ID           string       `json:"id"`
	State        SessionState `json:"state"`
	ComponentID  string       `json:"component_id"`
	SourceZoneID string       `json:"source_zone_id"`
	GrabOffset   Point        `json:"grab_offset"`
	Pointer      Point        `json:"pointer"`
	HoveredZone  string       `json:"hovered_zone,omitempty"`
	Hovering     bool         `json:"hovering"`
	StartedAt    time.Time    `json:"started_at"`
}

// PreviewOrigin is where the floating preview's top-left corner belongs so that it
// stays under the point the user grabbed.
func (s SessionSnapshot) PreviewOrigin() Point {
	return s.Pointer.Sub(s.GrabOffset)
}
