package tui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles
	ColorHighlight = "205" // Magenta - hovered drop target
	ColorFocus     = "63"  // Indigo - focused zone
	ColorMuted     = "241" // Gray - hints, idle borders
	ColorText      = "252" // Light gray - component rows
	ColorWarning   = "208" // Orange - pressing
)

var styles = struct {
	Title     lipgloss.Style
	Zone      lipgloss.Style
	ZoneFocus lipgloss.Style
	ZoneHover lipgloss.Style
	Component lipgloss.Style
	Dragged   lipgloss.Style
	Pressing  lipgloss.Style
	Hint      lipgloss.Style
	Status    lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	Zone: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)),
	ZoneFocus: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorFocus)),
	ZoneHover: lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)),
	Component: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Dragged: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Pressing: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
}
