package core

// Point is a position in page percentage space: both axes range over
// [0,100] relative to the page's intrinsic width and height. Geometry is
// never stored in device pixels, so annotations stay valid across zoom and
// container-size changes without any rescaling step.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in page percentage space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Normalized returns the rectangle with positive width and height, moving
// the origin to the minimum corner if either dimension is negative.
func (r Rect) Normalized() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Mapper converts device (pointer) coordinates to page percentage space.
// It is stateless apart from the last successfully mapped point, which is
// returned when the measuring rectangle is degenerate (zero width or
// height) so callers never divide by zero.
type Mapper struct {
	last Point
}

// ToPage maps a pointer position to percentage space given the bounding
// rectangle of the interactive surface in device coordinates.
func (m *Mapper) ToPage(clientX, clientY float64, surface Rect) Point {
	if surface.W <= 0 || surface.H <= 0 {
		return m.last
	}
	p := Point{
		X: (clientX - surface.X) / surface.W * 100,
		Y: (clientY - surface.Y) / surface.H * 100,
	}
	m.last = p
	return p
}

// Clamp limits v to the [lo, hi] interval.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bounds returns the bounding box of a point list. The zero Rect is
// returned for an empty list.
func Bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
