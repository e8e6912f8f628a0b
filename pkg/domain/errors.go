package domain

import "errors"

// ErrUnknownZone is returned when an operation references a zone id that is not in the layout.
var ErrUnknownZone = errors.New("unknown zone")

// ErrDuplicateZoneID is returned at construction time when two descriptors share an id.
var ErrDuplicateZoneID = errors.New("duplicate zone id")

// ErrComponentPlaced is returned when a component would end up in more than one zone.
var ErrComponentPlaced = errors.New("component already placed")

// ErrInvalidWidth is returned when a width token or size cannot be accepted.
var ErrInvalidWidth = errors.New("invalid width")

// ErrLayoutNotFound is returned when a layout id cannot be found in the snapshot store.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrInvalidSnapshot is returned when a layout snapshot breaks the layout rules.
var ErrInvalidSnapshot = errors.New("invalid layout snapshot")
