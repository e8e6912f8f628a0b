package ports

import "github.com/aretw0/dashgrid/pkg/domain"

// ComponentRegistry maps component ids to their renderable descriptors.
// The engine never mutates the registry; an unknown id is simply absent.
type ComponentRegistry interface {
	Resolve(componentID string) (domain.ComponentDescriptor, bool)
}

// Acknowledger emits a best-effort acknowledgment (e.g. a haptic pulse) when a
// long-press activates. Errors are logged and otherwise ignored.
type Acknowledger interface {
	Acknowledge() error
}

// AcknowledgerFunc adapts a plain function to Acknowledger.
type AcknowledgerFunc func() error

// Acknowledge calls f.
func (f AcknowledgerFunc) Acknowledge() error {
	return f()
}
