// Package layout owns the authoritative zone-to-components map.
package layout

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/aretw0/dashgrid/pkg/ports"
	"github.com/google/uuid"
)

// Listener receives layout-changed events.
type Listener func(*domain.LayoutEvent)

// Store holds the zones and serializes every mutation.
// Listeners are called after the mutation completes, outside the lock.
type Store struct {
	mu       sync.Mutex
	order    []string
	zones    map[string]*domain.Zone
	registry ports.ComponentRegistry
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time

	subMu  sync.Mutex
	nextID uint64
	subs   []subscriber
}

type subscriber struct {
	id uint64
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithRegistry sets the component registry used by GetComponent.
func WithRegistry(r ports.ComponentRegistry) Option {
	return func(s *Store) {
		s.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides zone id generation (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New builds a store from zone descriptors, keeping their order.
func New(descriptors []domain.ZoneDescriptor, opts ...Option) (*Store, error) {
	s := &Store{
		zones:  make(map[string]*domain.Zone, len(descriptors)),
		logger: logging.NewNop(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	placed := make(map[string]string)
	for _, d := range descriptors {
		if _, exists := s.zones[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateZoneID, d.ID)
		}
		if err := d.Width.Validate(); err != nil {
			return nil, fmt.Errorf("zone %q: %w", d.ID, err)
		}
		for _, c := range d.Components {
			if owner, ok := placed[c]; ok {
				return nil, fmt.Errorf("%w: %q in %q and %q", domain.ErrComponentPlaced, c, owner, d.ID)
			}
			placed[c] = d.ID
		}
		s.zones[d.ID] = &domain.Zone{
			ID:         d.ID,
			Width:      d.Width,
			Components: append([]string{}, d.Components...),
		}
		s.order = append(s.order, d.ID)
	}
	return s, nil
}

// Snapshot returns an immutable copy of the current layout.
func (s *Store) Snapshot() domain.LayoutSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Zone returns a copy of a single zone.
func (s *Store) Zone(zoneID string) (domain.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[zoneID]
	if !ok {
		return domain.Zone{}, false
	}
	return domain.Zone{ID: z.ID, Width: z.Width, Components: append([]string{}, z.Components...)}, true
}

// Contains reports whether zoneID lists componentID.
func (s *Store) Contains(zoneID, componentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[zoneID]
	return ok && slices.Contains(z.Components, componentID)
}

// Locate returns the zone holding componentID.
func (s *Store) Locate(componentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.locateLocked(componentID)
	return id, id != ""
}

// GetComponent resolves a component through the registry.
// Unknown ids, and a store without a registry, yield absent.
func (s *Store) GetComponent(componentID string) (domain.ComponentDescriptor, bool) {
	if s.registry == nil {
		return domain.ComponentDescriptor{}, false
	}
	return s.registry.Resolve(componentID)
}

// Move relocates componentID from one zone to the end of another.
// Moving within the same zone, or moving a component that lives in a third zone,
// is a no-op and raises no notification.
func (s *Store) Move(componentID, fromZoneID, toZoneID string) error {
	_, err := s.Transfer(componentID, fromZoneID, toZoneID)
	return err
}

// Transfer is Move that also reports whether the layout changed. It returns
// false with a nil error for the no-op cases: same zone, or a component that is
// now owned by a zone other than fromZoneID.
func (s *Store) Transfer(componentID, fromZoneID, toZoneID string) (bool, error) {
	if fromZoneID == toZoneID {
		return false, nil
	}

	s.mu.Lock()
	to, ok := s.zones[toZoneID]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("move %q to %q: %w", componentID, toZoneID, domain.ErrUnknownZone)
	}

	owner := s.locateLocked(componentID)
	if owner != "" && owner != fromZoneID {
		s.mu.Unlock()
		s.logger.Debug("move ignored, component placed elsewhere",
			"component_id", componentID, "from_zone", fromZoneID, "owner_zone", owner)
		return false, nil
	}

	if from, ok := s.zones[fromZoneID]; ok {
		from.Components = slices.DeleteFunc(from.Components, func(id string) bool { return id == componentID })
	}
	to.Components = append(to.Components, componentID)
	evt := s.eventLocked(domain.OpMove, toZoneID, componentID)
	s.mu.Unlock()

	s.logger.Debug("component moved", "component_id", componentID, "from_zone", fromZoneID, "to_zone", toZoneID)
	s.notify(evt)
	return true, nil
}

// AddZone appends a new zone with a fresh id and returns that id.
func (s *Store) AddZone(width domain.Width, initial ...string) (string, error) {
	if err := width.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	seen := make(map[string]bool, len(initial))
	for _, c := range initial {
		if owner := s.locateLocked(c); owner != "" || seen[c] {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %q", domain.ErrComponentPlaced, c)
		}
		seen[c] = true
	}

	id := s.newID()
	for s.zones[id] != nil {
		id = s.newID()
	}
	s.zones[id] = &domain.Zone{ID: id, Width: width, Components: append([]string{}, initial...)}
	s.order = append(s.order, id)
	evt := s.eventLocked(domain.OpAddZone, id, "")
	s.mu.Unlock()

	s.logger.Debug("zone added", "zone_id", id, "width", width.String())
	s.notify(evt)
	return id, nil
}

// RemoveZone deletes a zone. Its components move, in order, to the first remaining
// zone. When no zone remains the components are dropped and reported in the event.
func (s *Store) RemoveZone(zoneID string) error {
	s.mu.Lock()
	removed, ok := s.zones[zoneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove %q: %w", zoneID, domain.ErrUnknownZone)
	}

	delete(s.zones, zoneID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == zoneID })

	var dropped []string
	if len(s.order) > 0 {
		fallback := s.zones[s.order[0]]
		fallback.Components = append(fallback.Components, removed.Components...)
	} else {
		dropped = append(dropped, removed.Components...)
	}
	evt := s.eventLocked(domain.OpRemoveZone, zoneID, "")
	evt.Dropped = dropped
	s.mu.Unlock()

	if len(dropped) > 0 {
		s.logger.Warn("last zone removed, components dropped", "zone_id", zoneID, "dropped", dropped)
	} else {
		s.logger.Debug("zone removed", "zone_id", zoneID)
	}
	s.notify(evt)
	return nil
}

// ChangeZoneWidth updates a zone's width in place. Every successful call notifies,
// including one that sets the width the zone already has.
func (s *Store) ChangeZoneWidth(zoneID string, width domain.Width) error {
	if err := width.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	z, ok := s.zones[zoneID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("change width of %q: %w", zoneID, domain.ErrUnknownZone)
	}
	z.Width = width
	evt := s.eventLocked(domain.OpChangeWidth, zoneID, "")
	s.mu.Unlock()

	s.logger.Debug("zone width changed", "zone_id", zoneID, "width", width.String())
	s.notify(evt)
	return nil
}

// Replace swaps the whole layout for the given snapshot, e.g. when restoring
// persisted state. The snapshot must satisfy the same rules as construction.
func (s *Store) Replace(snap domain.LayoutSnapshot) error {
	fresh, err := New(snap.Descriptors())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.order = fresh.order
	s.zones = fresh.zones
	evt := s.eventLocked(domain.OpReplace, "", "")
	s.mu.Unlock()

	s.notify(evt)
	return nil
}

func (s *Store) locateLocked(componentID string) string {
	for _, id := range s.order {
		if slices.Contains(s.zones[id].Components, componentID) {
			return id
		}
	}
	return ""
}

func (s *Store) snapshotLocked() domain.LayoutSnapshot {
	zones := make([]domain.Zone, 0, len(s.order))
	for _, id := range s.order {
		zones = append(zones, *s.zones[id])
	}
	return domain.NewLayoutSnapshot(zones)
}

func (s *Store) eventLocked(op domain.LayoutOp, zoneID, componentID string) *domain.LayoutEvent {
	return &domain.LayoutEvent{
		Timestamp: s.now(),
		Op:        op,
		ZoneID:    zoneID,
		Component: componentID,
		Snapshot:  s.snapshotLocked(),
	}
}
