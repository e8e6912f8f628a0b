package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Engine is the part of the dashgrid engine the terminal dashboard drives.
type Engine interface {
	Layout() domain.LayoutSnapshot
	Policy() domain.ActivationPolicy
	AddZone(width domain.Width, initial ...string) (string, error)
	RemoveZone(zoneID string) error
	ChangeZoneWidth(zoneID string, width domain.Width) error

	RegisterZoneBounds(zoneID string, bounds domain.Rect)
	UnregisterRegion(id string)

	PointerDown(g domain.Grab) bool
	PointerMove(p domain.Point)
	PointerUp(p domain.Point)
	Session() (domain.SessionSnapshot, bool)
	State() domain.SessionState
	CancelDrag() bool
}

// widthCycle is the order "w" steps through on the focused zone.
var widthCycle = []string{domain.WidthSmall, domain.WidthMedium, domain.WidthLarge, domain.WidthFull}

// refreshMsg asks for a redraw, e.g. once a long-press may have activated.
type refreshMsg struct{}

// Model is the bubbletea model of the terminal dashboard. Each zone is a column;
// components are rows that can be dragged between columns with the mouse.
type Model struct {
	engine Engine
	zones  *zone.Manager

	width, height int
	focus         int
	registered    []string
	status        string
}

// New creates the dashboard model. A nil manager disables handle marking and
// presses are resolved from the layout geometry alone.
func New(engine Engine, zones *zone.Manager) *Model {
	return &Model{engine: engine, zones: zones}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.syncBounds()
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case refreshMsg:
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := domain.Point{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		zoneID, componentID, origin, ok := m.componentAt(msg)
		if !ok {
			return nil
		}
		if !m.engine.PointerDown(domain.Grab{
			ComponentID: componentID,
			ZoneID:      zoneID,
			Pointer:     p,
			Origin:      origin,
		}) {
			return nil
		}
		m.status = ""
		if policy := m.engine.Policy(); policy.IsDelayed() {
			return tea.Tick(policy.Delay+10*time.Millisecond, func(time.Time) tea.Msg { return refreshMsg{} })
		}
	case tea.MouseActionMotion:
		m.engine.PointerMove(p)
	case tea.MouseActionRelease:
		before := m.engine.Layout()
		m.engine.PointerUp(p)
		if after := m.engine.Layout(); !after.Equal(before) {
			m.syncBounds()
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		if m.engine.CancelDrag() {
			m.status = "drag cancelled"
		}
	case "tab", "right", "l":
		if n := len(m.engine.Layout().Order); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case "shift+tab", "left", "h":
		if n := len(m.engine.Layout().Order); n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}
	case "a":
		id, err := m.engine.AddZone(domain.TokenWidth(domain.WidthSmall))
		m.report(err, "added zone "+id)
		m.focus = len(m.engine.Layout().Order) - 1
		m.syncBounds()
	case "x":
		if id, ok := m.focused(); ok {
			m.report(m.engine.RemoveZone(id), "removed zone "+id)
			m.focus = max(0, min(m.focus, len(m.engine.Layout().Order)-1))
			m.syncBounds()
		}
	case "w":
		if id, ok := m.focused(); ok {
			next := nextWidth(m.engine.Layout().Zones[id].Width)
			m.report(m.engine.ChangeZoneWidth(id, next), fmt.Sprintf("%s is now %s", id, next))
			m.syncBounds()
		}
	}
	return nil
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ok
}

func (m *Model) focused() (string, bool) {
	order := m.engine.Layout().Order
	if m.focus < 0 || m.focus >= len(order) {
		return "", false
	}
	return order[m.focus], true
}

func nextWidth(w domain.Width) domain.Width {
	i := slices.Index(widthCycle, w.Token)
	return domain.TokenWidth(widthCycle[(i+1)%len(widthCycle)])
}

// syncBounds registers one drop target per column and forgets columns that went away.
func (m *Model) syncBounds() {
	cols := columns(m.engine.Layout(), m.width)
	current := make([]string, 0, len(cols))
	for _, c := range cols {
		m.engine.RegisterZoneBounds(c.zoneID, c.bounds(m.height))
		current = append(current, c.zoneID)
	}
	for _, id := range m.registered {
		if !slices.Contains(current, id) {
			m.engine.UnregisterRegion(id)
		}
	}
	m.registered = current
}

// componentAt resolves a press to the component row beneath it, preferring the
// marked handle regions from the last render.
func (m *Model) componentAt(msg tea.MouseMsg) (zoneID, componentID string, origin domain.Point, ok bool) {
	snap := m.engine.Layout()
	for _, c := range columns(snap, m.width) {
		for i, comp := range snap.Zones[c.zoneID].Components {
			if m.zones != nil && m.zones.Get(handleID(comp)).InBounds(msg) {
				return c.zoneID, comp, c.rowOrigin(i), true
			}
			o := c.rowOrigin(i)
			if msg.Y == int(o.Y) && msg.X >= c.x && msg.X < c.x+c.width {
				return c.zoneID, comp, o, true
			}
		}
	}
	return "", "", domain.Point{}, false
}

func handleID(componentID string) string {
	return "handle:" + componentID
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	snap := m.engine.Layout()
	sess, dragging := m.engine.Session()
	focusID, _ := m.focused()

	var cols []string
	for _, c := range columns(snap, m.width) {
		cols = append(cols, m.renderColumn(c, snap.Zones[c.zoneID], sess, dragging, c.zoneID == focusID))
	}

	header := styles.Title.Render("dashgrid") + styles.Hint.Render(fmt.Sprintf("  %d zones, %d components",
		len(snap.Order), snap.ComponentCount()))
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	view := lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer(sess, dragging))
	if m.zones != nil {
		return m.zones.Scan(view)
	}
	return view
}

func (m *Model) renderColumn(c column, z domain.ZoneState, sess domain.SessionSnapshot, dragging bool, focused bool) string {
	style := styles.Zone
	switch {
	case dragging && sess.State == domain.StateDragging && sess.Hovering && sess.HoveredZone == c.zoneID:
		style = styles.ZoneHover
	case focused:
		style = styles.ZoneFocus
	}

	inner := max(c.width-2, 1)
	lines := []string{styles.Title.Render(truncate(fmt.Sprintf("%s (%s)", c.zoneID, z.Width), inner))}
	for _, comp := range z.Components {
		row := styles.Component
		if dragging && sess.ComponentID == comp {
			row = styles.Dragged
			if sess.State == domain.StatePressing {
				row = styles.Pressing
			}
		}
		line := row.Render(truncate("≡ "+comp, inner))
		if m.zones != nil {
			line = m.zones.Mark(handleID(comp), line)
		}
		lines = append(lines, line)
	}

	height := max(m.height-headerRows-footerRows-2, 1)
	return style.Width(inner).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) footer(sess domain.SessionSnapshot, dragging bool) string {
	if dragging {
		target := "nowhere"
		if sess.Hovering {
			target = sess.HoveredZone
		}
		o := sess.PreviewOrigin()
		return styles.Status.Render(fmt.Sprintf("%s %s from %s over %s at (%.0f,%.0f)",
			sess.State, sess.ComponentID, sess.SourceZoneID, target, o.X, o.Y))
	}
	if m.status != "" {
		return styles.Status.Render(m.status)
	}
	return styles.Hint.Render("drag rows between zones · tab focus · a add · x remove · w width · esc cancel · q quit")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
