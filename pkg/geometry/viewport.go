package geometry

import "github.com/canopyhq/canopy/pkg/scene"

// Viewport describes the current pan/zoom transform and the canvas pixel
// dimensions, as supplied by the interaction collaborator. A canvas point c
// appears on screen at c*Zoom + Pan.
type Viewport struct {
	Pan    scene.Point `json:"pan" bson:"pan"`
	Zoom   float64     `json:"zoom" bson:"zoom"`
	Width  float64     `json:"width" bson:"width"`
	Height float64     `json:"height" bson:"height"`
}

// IsZero reports whether no viewport was supplied. Visibility filtering is an
// optimization, so a zero viewport means "everything visible".
func (v Viewport) IsZero() bool { return v == Viewport{} }

// VisibleRect returns the canvas-space region currently on screen.
// A non-positive zoom is treated as 1 to keep the division defined.
func (v Viewport) VisibleRect() Rect {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return Rect{
		Left:   -v.Pan.X / zoom,
		Top:    -v.Pan.Y / zoom,
		Right:  (-v.Pan.X + v.Width) / zoom,
		Bottom: (-v.Pan.Y + v.Height) / zoom,
	}
}

// EdgeVisible reports whether an edge's bounding box overlaps the visible
// canvas region. Degenerate boxes are inflated by [BoundingRect] before the
// test, so straight horizontal or vertical edges are never filtered out by a
// zero-area box.
func (v Viewport) EdgeVisible(ep Endpoints) bool {
	if v.IsZero() {
		return true
	}
	return BoundingRect(ep.Source, ep.Target).Overlaps(v.VisibleRect())
}
