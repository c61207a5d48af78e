package geometry

import "github.com/canopyhq/canopy/pkg/scene"

// Rect is an axis-aligned rectangle in canvas units.
type Rect struct {
	Left, Right float64
	Top, Bottom float64
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Overlaps reports whether two rectangles share any area.
// Touching boundaries count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right &&
		r.Top <= o.Bottom && o.Top <= r.Bottom
}

// BoundingRect returns the smallest rectangle containing both points.
// A degenerate axis (both points identical on it) is inflated by one unit so
// the box never has zero area; a zero-area box would always fail an overlap
// test even when the edge is plainly on screen.
func BoundingRect(a, b scene.Point) Rect {
	r := Rect{
		Left:   min(a.X, b.X),
		Right:  max(a.X, b.X),
		Top:    min(a.Y, b.Y),
		Bottom: max(a.Y, b.Y),
	}
	if r.Width() == 0 {
		r.Right++
	}
	if r.Height() == 0 {
		r.Bottom++
	}
	return r
}
