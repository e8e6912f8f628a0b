package domain

// Point is a pointer coordinate in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// DistanceSq returns the squared euclidean distance to o.
func (p Point) DistanceSq(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned region with its top-left corner at (X, Y).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the rectangle.
// The top and left edges are inside, the bottom and right edges are not,
// so adjacent rectangles never both claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Region is a registered drop-target rectangle that resolves to a zone.
// A nested drop-target marker sets Parent to its container's region id.
type Region struct {
	ID     string `json:"id"`
	ZoneID string `json:"zone_id,omitempty"`
	Parent string `json:"parent,omitempty"`
	Bounds Rect   `json:"bounds"`
}

// Zone returns the zone this region resolves to. A region without a ZoneID
// stands for the zone of the same id.
func (r Region) Zone() string {
	if r.ZoneID != "" {
		return r.ZoneID
	}
	return r.ID
}
