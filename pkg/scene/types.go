package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document - Scene Graph Serialization
// =============================================================================

// Side names used in serialized documents.
const (
	sideTop    = "top"
	sideRight  = "right"
	sideBottom = "bottom"
	sideLeft   = "left"
)

var sideFromString = map[string]Side{
	sideTop:    SideTop,
	sideRight:  SideRight,
	sideBottom: SideBottom,
	sideLeft:   SideLeft,
}

// Document is the canonical serialization format for scene graphs.
// Used for API requests, storage, caching, and round-trip import/export.
type Document struct {
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges,omitempty" bson:"edges,omitempty"`
}

// NodeRecord is the serialized form of a Node. Width and Height are pointers
// so an unmeasured node round-trips as "unmeasured" rather than as a zero
// size.
type NodeRecord struct {
	ID     string       `json:"id" bson:"id"`
	Parent string       `json:"parent,omitempty" bson:"parent,omitempty"`
	X      float64      `json:"x" bson:"x"`
	Y      float64      `json:"y" bson:"y"`
	Width  *float64     `json:"width,omitempty" bson:"width,omitempty"`
	Height *float64     `json:"height,omitempty" bson:"height,omitempty"`
	Ports  []PortRecord `json:"ports,omitempty" bson:"ports,omitempty"`
}

// PortRecord is the serialized form of a Port. X and Y are only present when
// the port declares an explicit offset within its node.
type PortRecord struct {
	ID   string   `json:"id" bson:"id"`
	Side string   `json:"side" bson:"side"`
	X    *float64 `json:"x,omitempty" bson:"x,omitempty"`
	Y    *float64 `json:"y,omitempty" bson:"y,omitempty"`
}

// EdgeRecord is the serialized form of an Edge. A missing target marks a
// connection in progress.
type EdgeRecord struct {
	ID         string `json:"id" bson:"id"`
	Source     string `json:"source" bson:"source"`
	Target     string `json:"target,omitempty" bson:"target,omitempty"`
	SourcePort string `json:"source_port,omitempty" bson:"source_port,omitempty"`
	TargetPort string `json:"target_port,omitempty" bson:"target_port,omitempty"`
}

// =============================================================================
// Scene ↔ Document Conversion
// =============================================================================

// FromScene converts a scene graph to its serialization format.
// Nodes and edges keep insertion order for deterministic output.
func FromScene(s *Scene) Document {
	nodes := s.Nodes()
	doc := Document{
		Nodes: make([]NodeRecord, len(nodes)),
		Edges: make([]EdgeRecord, 0, s.EdgeCount()),
	}
	for i, n := range nodes {
		doc.Nodes[i] = nodeRecord(n)
	}
	for _, e := range s.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			ID:         e.ID,
			Source:     e.Source,
			Target:     e.Target,
			SourcePort: e.SourcePort,
			TargetPort: e.TargetPort,
		})
	}
	return doc
}

// ToScene converts a Document to a scene graph.
// Node records may appear in any order relative to their parents; edge
// records are added after all nodes. Returns an error wrapped with the
// offending node or edge ID when the document violates scene constraints.
func ToScene(doc Document) (*Scene, error) {
	s := New()
	for _, nr := range doc.Nodes {
		n := Node{
			ID:       nr.ID,
			ParentID: nr.Parent,
			Position: Point{X: nr.X, Y: nr.Y},
		}
		if nr.Width != nil && nr.Height != nil {
			n.Size = &Size{Width: *nr.Width, Height: *nr.Height}
		}
		for _, pr := range nr.Ports {
			side, ok := sideFromString[pr.Side]
			if !ok {
				return nil, fmt.Errorf("node %s: port %s: unknown side %q", nr.ID, pr.ID, pr.Side)
			}
			p := Port{ID: pr.ID, Side: side}
			if pr.X != nil && pr.Y != nil {
				p.Offset = Point{X: *pr.X, Y: *pr.Y}
				p.HasOffset = true
			}
			n.Ports = append(n.Ports, p)
		}
		if err := s.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", nr.ID, err)
		}
	}
	for _, er := range doc.Edges {
		e := Edge{
			ID:         er.ID,
			Source:     er.Source,
			Target:     er.Target,
			SourcePort: er.SourcePort,
			TargetPort: er.TargetPort,
		}
		if err := s.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %s: %w", er.ID, err)
		}
	}
	return s, nil
}

func nodeRecord(n *Node) NodeRecord {
	nr := NodeRecord{
		ID:     n.ID,
		Parent: n.ParentID,
		X:      n.Position.X,
		Y:      n.Position.Y,
	}
	if n.Size != nil {
		w, h := n.Size.Width, n.Size.Height
		nr.Width = &w
		nr.Height = &h
	}
	for _, p := range n.Ports {
		pr := PortRecord{ID: p.ID, Side: p.Side.String()}
		if p.HasOffset {
			x, y := p.Offset.X, p.Offset.Y
			pr.X = &x
			pr.Y = &y
		}
		nr.Ports = append(nr.Ports, pr)
	}
	return nr
}

// =============================================================================
// Document I/O
// =============================================================================

// MarshalDocument converts a scene graph to indented JSON bytes.
func MarshalDocument(s *Scene) ([]byte, error) {
	doc := FromScene(s)
	return json.MarshalIndent(doc, "", "  ")
}

// WriteDocument writes a scene graph as JSON to w.
// The output can be re-imported with [ReadDocument] for round-trip
// processing.
func WriteDocument(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromScene(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON scene document from r.
//
// The input must be a JSON object with a "nodes" array and an optional
// "edges" array:
//
//	{
//	  "nodes": [
//	    {"id": "s1", "x": 0, "y": 0, "width": 200, "height": 120},
//	    {"id": "n1", "parent": "s1", "x": 5, "y": 5, "width": 40, "height": 20}
//	  ],
//	  "edges": [{"id": "e1", "source": "n1", "target": "s1"}]
//	}
//
// Omitted width/height mean the node is not yet measured. ReadDocument does
// not close r.
func ReadDocument(r io.Reader) (*Scene, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToScene(doc)
}

// ReadDocumentFile reads a JSON scene document from a file.
func ReadDocumentFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocumentFile writes a scene graph to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(s, f)
}
