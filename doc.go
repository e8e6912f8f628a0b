/*
Package dashgrid is a headless drag-and-drop placement engine for dashboard widgets.

It turns raw pointer events into committed changes of a component-to-zone
assignment. Rendering stays with the host: the host reports where its zones are
on screen, forwards pointer events, and draws whatever the engine's snapshots say.

# Concept

A layout is an ordered set of zones, each with a width and an append-only list of
component ids. A component lives in at most one zone. Every mutation is atomic and
followed by a layout-changed notification carrying a full snapshot, which the host
may persist at any time.

A drag gesture is a small state machine: idle, pressing (long-press only),
dragging, and back to idle. Only one gesture can be in flight.

# Key Features

  - Two activation policies: immediate, or long-press gated with a cancelable timer.
  - Hit testing against registered regions, deepest and topmost first.
  - Synchronous teardown: no listener or timer survives the end of a gesture.
  - Deterministic tests through activation.NewManual.

# Usage

	eng, err := dashgrid.New([]domain.ZoneDescriptor{
		{ID: "left", Width: domain.TokenWidth(domain.WidthSmall), Components: []string{"clock"}},
		{ID: "right", Width: domain.TokenWidth(domain.WidthLarge)},
	}, dashgrid.WithActivation(domain.Delayed(time.Second)))
	if err != nil {
		log.Fatal(err)
	}

	eng.OnLayoutChanged(func(e *domain.LayoutEvent) {
		save(e.Snapshot)
	})

	eng.RegisterZoneBounds("left", domain.Rect{X: 0, Y: 0, Width: 300, Height: 600})
	eng.RegisterZoneBounds("right", domain.Rect{X: 300, Y: 0, Width: 900, Height: 600})

	eng.PointerDown(domain.Grab{ComponentID: "clock", ZoneID: "left", Pointer: p, Origin: topLeft})
	eng.PointerMove(next)
	eng.PointerUp(next)
*/
package dashgrid
