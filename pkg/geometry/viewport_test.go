package geometry

import (
	"testing"

	"github.com/canopyhq/canopy/pkg/scene"
)

func TestBoundingRect(t *testing.T) {
	r := BoundingRect(scene.Point{X: 30, Y: 40}, scene.Point{X: 10, Y: 20})
	want := Rect{Left: 10, Right: 30, Top: 20, Bottom: 40}
	if r != want {
		t.Errorf("BoundingRect = %+v, want %+v", r, want)
	}

	// A perfectly horizontal edge still yields a box with area.
	r = BoundingRect(scene.Point{X: 0, Y: 5}, scene.Point{X: 50, Y: 5})
	if r.Height() == 0 {
		t.Error("degenerate vertical axis should be inflated")
	}
	r = BoundingRect(scene.Point{X: 5, Y: 0}, scene.Point{X: 5, Y: 50})
	if r.Width() == 0 {
		t.Error("degenerate horizontal axis should be inflated")
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{Left: 0, Right: 10, Top: 0, Bottom: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"contained", Rect{Left: 2, Right: 8, Top: 2, Bottom: 8}, true},
		{"touching edge", Rect{Left: 10, Right: 20, Top: 0, Bottom: 10}, true},
		{"disjoint right", Rect{Left: 11, Right: 20, Top: 0, Bottom: 10}, false},
		{"disjoint below", Rect{Left: 0, Right: 10, Top: 11, Bottom: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps not symmetric")
			}
		})
	}
}

func TestViewportVisibleRect(t *testing.T) {
	v := Viewport{Zoom: 2, Width: 200, Height: 100}
	r := v.VisibleRect()
	if r != (Rect{Left: 0, Right: 100, Top: 0, Bottom: 50}) {
		t.Errorf("VisibleRect = %+v", r)
	}

	v = Viewport{Pan: scene.Point{X: -100, Y: -50}, Zoom: 1, Width: 200, Height: 100}
	r = v.VisibleRect()
	if r != (Rect{Left: 100, Right: 300, Top: 50, Bottom: 150}) {
		t.Errorf("panned VisibleRect = %+v", r)
	}

	// Zero zoom would divide by zero; it falls back to 1.
	v = Viewport{Width: 10, Height: 10, Zoom: 0, Pan: scene.Point{X: 1, Y: 1}}
	r = v.VisibleRect()
	if r.Left != -1 || r.Right != 9 {
		t.Errorf("zero zoom VisibleRect = %+v", r)
	}
}

func TestEdgeVisible(t *testing.T) {
	v := Viewport{Zoom: 1, Width: 100, Height: 100}

	in := Endpoints{Source: scene.Point{X: 10, Y: 10}, Target: scene.Point{X: 50, Y: 50}}
	if !v.EdgeVisible(in) {
		t.Error("edge inside the viewport should be visible")
	}

	out := Endpoints{Source: scene.Point{X: 500, Y: 500}, Target: scene.Point{X: 600, Y: 600}}
	if v.EdgeVisible(out) {
		t.Error("edge far off screen should be culled")
	}

	// Crossing edges are visible even when both endpoints are outside.
	crossing := Endpoints{Source: scene.Point{X: -50, Y: 50}, Target: scene.Point{X: 150, Y: 50}}
	if !v.EdgeVisible(crossing) {
		t.Error("edge crossing the viewport should be visible")
	}

	// No viewport supplied: filtering is disabled.
	if !(Viewport{}).EdgeVisible(out) {
		t.Error("zero viewport must treat everything as visible")
	}
}
