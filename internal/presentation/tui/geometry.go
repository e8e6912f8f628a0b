package tui

import (
	"github.com/aretw0/dashgrid/pkg/domain"
)

// Rows taken by the header and the footer.
const (
	headerRows = 1
	footerRows = 1
)

// column is the screen placement of one zone, in terminal cells.
type column struct {
	zoneID string
	x      int
	width  int
}

// weight maps a zone width to its share of the screen. Custom sizes are read
// as a percentage of the screen, so 100 weighs the same as "full".
func weight(w domain.Width) float64 {
	switch w.Token {
	case domain.WidthSmall:
		return 1
	case domain.WidthMedium:
		return 2
	case domain.WidthLarge:
		return 3
	case domain.WidthFull:
		return 4
	}
	if w.Custom <= 0 {
		return 1
	}
	return max(w.Custom/25, 0.5)
}

// columns lays zones left to right in snapshot order, splitting screenWidth by weight.
// The last column absorbs rounding so the row is always filled.
func columns(snap domain.LayoutSnapshot, screenWidth int) []column {
	if len(snap.Order) == 0 || screenWidth <= 0 {
		return nil
	}
	var total float64
	for _, id := range snap.Order {
		total += weight(snap.Zones[id].Width)
	}

	cols := make([]column, 0, len(snap.Order))
	x := 0
	for i, id := range snap.Order {
		w := int(float64(screenWidth) * weight(snap.Zones[id].Width) / total)
		if i == len(snap.Order)-1 {
			w = screenWidth - x
		}
		w = max(w, 4)
		cols = append(cols, column{zoneID: id, x: x, width: w})
		x += w
	}
	return cols
}

// bounds is the hit-test rectangle of a column on a screen of the given height.
func (c column) bounds(screenHeight int) domain.Rect {
	return domain.Rect{
		X:      float64(c.x),
		Y:      headerRows,
		Width:  float64(c.width),
		Height: float64(max(screenHeight-headerRows-footerRows, 1)),
	}
}

// rowOrigin is the top-left cell of the i-th component row inside a column:
// one cell in from the border, below the border and the title line.
func (c column) rowOrigin(i int) domain.Point {
	return domain.Point{X: float64(c.x + 1), Y: float64(headerRows + 2 + i)}
}
