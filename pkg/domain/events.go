package domain

import "time"

// LayoutOp names the mutation that produced a layout event.
type LayoutOp string

const (
	OpMove        LayoutOp = "move"
	OpAddZone     LayoutOp = "add_zone"
	OpRemoveZone  LayoutOp = "remove_zone"
	OpChangeWidth LayoutOp = "change_width"
	OpReplace     LayoutOp = "replace"
)

// LayoutEvent is the layout-changed notification payload.
type LayoutEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Op        LayoutOp       `json:"op"`
	ZoneID    string         `json:"zone_id,omitempty"`
	Component string         `json:"component_id,omitempty"`
	Snapshot  LayoutSnapshot `json:"snapshot"`
	// Dropped lists components discarded because the last zone was removed.
	Dropped []string `json:"dropped,omitempty"`
}

// DragEventType defines the category of a drag event.
type DragEventType string

const (
	EventPressStart  DragEventType = "press_start"
	EventDragStart   DragEventType = "drag_start"
	EventHoverChange DragEventType = "hover_change"
	EventDragEnd     DragEventType = "drag_end"
)

// DragEvent reports a drag session transition.
type DragEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      DragEventType   `json:"type"`
	Session   SessionSnapshot `json:"session"`
	Outcome   DropOutcome     `json:"outcome,omitempty"`
	Err       error           `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously after the transition has completed and may be nil.
type LifecycleHooks struct {
	OnPressStart    func(*DragEvent)
	OnDragStart     func(*DragEvent)
	OnHoverChange   func(*DragEvent)
	OnDragEnd       func(*DragEvent)
	OnLayoutChanged func(*LayoutEvent)
}

// ComposeHooks fans every callback out to all hook sets in order.
// A panicking hook does not prevent the others from running.
func ComposeHooks(sets ...LifecycleHooks) LifecycleHooks {
	drag := func(pick func(LifecycleHooks) func(*DragEvent)) func(*DragEvent) {
		var fns []func(*DragEvent)
		for _, s := range sets {
			if fn := pick(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(e *DragEvent) {
			for _, fn := range fns {
				safeCall(func() { fn(e) })
			}
		}
	}

	var layoutFns []func(*LayoutEvent)
	for _, s := range sets {
		if s.OnLayoutChanged != nil {
			layoutFns = append(layoutFns, s.OnLayoutChanged)
		}
	}
	var onLayout func(*LayoutEvent)
	if len(layoutFns) > 0 {
		onLayout = func(e *LayoutEvent) {
			for _, fn := range layoutFns {
				safeCall(func() { fn(e) })
			}
		}
	}

	return LifecycleHooks{
		OnPressStart:    drag(func(h LifecycleHooks) func(*DragEvent) { return h.OnPressStart }),
		OnDragStart:     drag(func(h LifecycleHooks) func(*DragEvent) { return h.OnDragStart }),
		OnHoverChange:   drag(func(h LifecycleHooks) func(*DragEvent) { return h.OnHoverChange }),
		OnDragEnd:       drag(func(h LifecycleHooks) func(*DragEvent) { return h.OnDragEnd }),
		OnLayoutChanged: onLayout,
	}
}

// safeCall calls fn with panic recovery. One observer failing shouldn't block others.
func safeCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
