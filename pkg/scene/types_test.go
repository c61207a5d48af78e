package scene

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestToScene(t *testing.T) {
	doc := Document{
		Nodes: []NodeRecord{
			// Child before parent is legal in documents.
			{ID: "n1", Parent: "s1", X: 5, Y: 5, Width: fp(40), Height: fp(20),
				Ports: []PortRecord{
					{ID: "out", Side: "right"},
					{ID: "pinned", Side: "top", X: fp(12), Y: fp(0)},
				}},
			{ID: "s1", X: 0, Y: 0, Width: fp(200), Height: fp(120)},
			{ID: "pending", X: 9, Y: 9},
		},
		Edges: []EdgeRecord{
			{ID: "e1", Source: "n1", Target: "s1", SourcePort: "out"},
			{ID: "drag", Source: "n1"},
		},
	}

	s, err := ToScene(doc)
	if err != nil {
		t.Fatalf("ToScene() error = %v", err)
	}
	if s.NodeCount() != 3 || s.EdgeCount() != 2 {
		t.Fatalf("counts = %d nodes, %d edges", s.NodeCount(), s.EdgeCount())
	}

	n1, _ := s.Node("n1")
	if !n1.Initialized() || n1.Size.Width != 40 {
		t.Errorf("n1 size = %+v", n1.Size)
	}
	p, ok := n1.Port("pinned")
	if !ok || !p.HasOffset || p.Offset != (Point{X: 12, Y: 0}) {
		t.Errorf("pinned port = %+v, %v", p, ok)
	}
	if out, _ := n1.Port("out"); out.HasOffset {
		t.Error("out port should have no explicit offset")
	}

	pending, _ := s.Node("pending")
	if pending.Initialized() {
		t.Error("node without width/height must stay unmeasured")
	}

	drag, _ := s.Edge("drag")
	if !drag.InProgress() {
		t.Error("edge without target should be in progress")
	}
}

func TestToSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{
			"duplicate node",
			Document{Nodes: []NodeRecord{{ID: "a"}, {ID: "a"}}},
			ErrDuplicateNodeID,
		},
		{
			"unknown edge source",
			Document{
				Nodes: []NodeRecord{{ID: "a"}},
				Edges: []EdgeRecord{{ID: "e", Source: "nope", Target: "a"}},
			},
			ErrUnknownSourceNode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToScene(tt.doc); !errors.Is(err, tt.want) {
				t.Errorf("ToScene() = %v, want %v", err, tt.want)
			}
		})
	}

	doc := Document{Nodes: []NodeRecord{
		{ID: "a", Ports: []PortRecord{{ID: "p", Side: "diagonal"}}},
	}}
	if _, err := ToScene(doc); err == nil || !strings.Contains(err.Error(), "diagonal") {
		t.Errorf("bad side: got %v", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := New()
	if err := s.AddNode(Node{ID: "s1", Size: &Size{Width: 200, Height: 120}}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(Node{
		ID: "n1", ParentID: "s1", Position: Point{X: 5, Y: 5},
		Size:  &Size{Width: 40, Height: 20},
		Ports: []Port{{ID: "out", Side: SideBottom, Offset: Point{X: 20, Y: 20}, HasOffset: true}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(Edge{ID: "e1", Source: "n1", Target: "s1", SourcePort: "out"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteDocumentFile(s, path); err != nil {
		t.Fatalf("WriteDocumentFile() error = %v", err)
	}
	got, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile() error = %v", err)
	}

	n1, ok := got.Node("n1")
	if !ok {
		t.Fatal("n1 missing after round trip")
	}
	if n1.ParentID != "s1" || n1.Position != (Point{X: 5, Y: 5}) {
		t.Errorf("n1 = %+v", n1)
	}
	p, ok := n1.Port("out")
	if !ok || p.Side != SideBottom || !p.HasOffset {
		t.Errorf("out port = %+v, %v", p, ok)
	}
	e, ok := got.Edge("e1")
	if !ok || e.SourcePort != "out" {
		t.Errorf("e1 = %+v, %v", e, ok)
	}
}

func TestReadDocumentRejectsGarbage(t *testing.T) {
	if _, err := ReadDocument(strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := ReadDocumentFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected open error")
	}
}
