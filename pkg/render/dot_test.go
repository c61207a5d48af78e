package render

import (
	"strings"
	"testing"

	"github.com/canopyhq/canopy/pkg/scene"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New()
	sz := scene.Size{Width: 40, Height: 20}
	for _, n := range []scene.Node{
		{ID: "s1", Size: &scene.Size{Width: 200, Height: 120}},
		{ID: "n1", ParentID: "s1", Position: scene.Point{X: 5, Y: 5}, Size: &sz},
		{ID: "n2", Position: scene.Point{X: 300, Y: 10}, Size: &sz},
		{ID: "pending"},
	} {
		if err := s.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddEdge(scene.Edge{ID: "e1", Source: "n1", Target: "n2", SourcePort: "out"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(scene.Edge{ID: "drag", Source: "n2"}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testScene(t), Options{})

	for _, want := range []string{
		"digraph canvas {",
		`subgraph "cluster_s1" {`,
		`"n1" [label="n1"];`,
		`"n1" -> "n2" [label="out"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	if strings.Contains(dot, `"n2" ->`) {
		t.Error("in-progress edge must not be exported")
	}
	if !strings.Contains(dot, "dashed") {
		t.Error("unmeasured node should be dashed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testScene(t), Options{Detailed: true})
	if !strings.Contains(dot, "at: (300, 10)") {
		t.Errorf("detailed label missing position:\n%s", dot)
	}
	if !strings.Contains(dot, "size: 40x20") {
		t.Errorf("detailed label missing size:\n%s", dot)
	}
	if !strings.Contains(dot, "unmeasured") {
		t.Errorf("detailed label missing unmeasured marker:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="108pt" height="87pt" viewBox="0.00 0.50 107.75 86.80" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 107.75 86.80"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="108" height="87"`) {
		t.Errorf("pixel dimensions wrong: %s", out)
	}

	plain := []byte("<svg>no viewbox</svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Error("svg without viewBox must pass through unchanged")
	}
}
