package scene

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Scene.AddNode] when the node ID is
	// empty. All nodes must have non-empty, stable identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Scene.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique across the scene graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Scene.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Scene.AddEdge] when an edge with the
	// same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownNode is returned by mutating operations that reference a node
	// ID not present in the scene graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned by [Scene.AddEdge] when the Source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Scene.AddEdge] when a non-empty
	// Target node does not exist. An empty Target is legal: it marks a
	// connection that is still being drawn.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParent is returned by [Scene.Validate] when a node's ParentID
	// references a node that does not exist.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrContainmentCycle is returned by [Scene.Validate] and
	// [Scene.Ancestors] when a parent chain loops back on itself. A cycle is
	// a data-integrity violation, never a normal runtime case: detection is
	// bounded by a visited set so resolution can fail fast instead of
	// looping.
	ErrContainmentCycle = errors.New("containment cycle")
)

// Point is a 2D coordinate or translation in canvas units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the component-wise sum of two points.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is a measured node extent in canvas units.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Side identifies the node boundary a port sits on.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

// String returns the canonical lowercase name of the side.
func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Port is a named connection point on a node's boundary.
// When HasOffset is false the port sits at the midpoint of its side;
// otherwise Offset is the port's position relative to the node's top-left
// corner.
type Port struct {
	ID        string
	Side      Side
	Offset    Point
	HasOffset bool
}

// Node is a single diagram element. A node with a non-empty ParentID is an
// overlay node contained in that parent's coordinate frame; a node that owns
// children acts as a container scene.
//
// The zero value is not usable: ID must be set before adding to a Scene.
type Node struct {
	ID       string
	ParentID string // containing scene, empty for top-level nodes
	Position Point  // relative to the parent's content origin
	Size     *Size  // nil until the layout collaborator reports a measurement
	Ports    []Port
}

// Initialized reports whether the node's size has been measured.
// Absolute geometry must not be trusted before initialization.
func (n *Node) Initialized() bool { return n.Size != nil }

// Port returns the declared port with the given ID.
func (n *Node) Port(id string) (Port, bool) {
	for _, p := range n.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// Edge is a logical connection between two nodes, optionally bound to named
// ports. An edge whose Target is empty is a connection in progress: the user
// is still dragging toward a target.
type Edge struct {
	ID         string
	Source     string
	Target     string
	SourcePort string // empty means "use the node's sole or default port"
	TargetPort string
}

// InProgress reports whether the edge's target endpoint is not yet resolved.
func (e Edge) InProgress() bool { return e.Target == "" }

// Scene is the mutable scene graph: an arena of nodes plus an edge list.
// The children index is derived and rebuilt lazily; structural mutation
// (adding, removing, or reparenting nodes) invalidates it.
type Scene struct {
	nodes    map[string]*Node
	order    []string // node insertion order, for deterministic iteration
	edges    []Edge
	edgeIdx  map[string]int
	children map[string][]string // parent ID -> child IDs, nil when stale
}

// New creates an empty scene graph.
func New() *Scene {
	return &Scene{
		nodes:   make(map[string]*Node),
		edgeIdx: make(map[string]int),
	}
}

// AddNode adds a node to the scene graph.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID when the ID
// is already taken. The node's ParentID is not checked here: parents may be
// added in any order, and unresolved references are reported by Validate.
func (s *Scene) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	node := &n
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	s.children = nil
	return nil
}

// AddEdge adds an edge to the scene graph.
// The source node must exist; the target must exist unless it is empty
// (a connection being drawn).
func (s *Scene) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := s.edgeIdx[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEdgeID, e.ID)
	}
	if _, ok := s.nodes[e.Source]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.Source)
	}
	if e.Target != "" {
		if _, ok := s.nodes[e.Target]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.Target)
		}
	}
	s.edgeIdx[e.ID] = len(s.edges)
	s.edges = append(s.edges, e)
	return nil
}

// Node returns the node with the given ID.
func (s *Scene) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		if n, ok := s.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the scene graph.
func (s *Scene) NodeCount() int { return len(s.nodes) }

// Edge returns the edge with the given ID.
func (s *Scene) Edge(id string) (Edge, bool) {
	i, ok := s.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return s.edges[i], true
}

// Edges returns all edges in insertion order.
// The returned slice is a copy and can be modified safely.
func (s *Scene) Edges() []Edge {
	return slices.Clone(s.edges)
}

// EdgeCount returns the number of edges in the scene graph.
func (s *Scene) EdgeCount() int { return len(s.edges) }

// RemoveNode deletes a node from the scene graph.
// Edges referencing the node are kept: the geometry resolver degrades them to
// not-renderable rather than this operation cascading deletes. Children of a
// removed container keep their ParentID; Validate reports them as orphaned.
func (s *Scene) RemoveNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.children = nil
	return nil
}

// MoveNode updates a node's local position. The update is atomic with respect
// to any later offset resolution: resolvers read positions through the scene,
// never from a copy.
func (s *Scene) MoveNode(id string, pos Point) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.Position = pos
	return nil
}

// SetSize records a measured size for a node, marking it initialized.
func (s *Scene) SetSize(id string, size Size) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	sz := size
	n.Size = &sz
	return nil
}

// SetParent reparents a node. An empty parentID makes the node top-level.
// The new parent must exist; containment cycles introduced by reparenting are
// caught by Validate and by the offset resolver's cycle guard.
func (s *Scene) SetParent(id, parentID string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if parentID != "" {
		if _, ok := s.nodes[parentID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
		}
	}
	n.ParentID = parentID
	s.children = nil
	return nil
}

// Children returns the IDs of the nodes directly contained by the given
// node, in insertion order. The children index is rebuilt at most once per
// structural change.
func (s *Scene) Children(id string) []string {
	s.reindex()
	return s.children[id]
}

// IsContainer reports whether the node currently owns at least one child.
func (s *Scene) IsContainer(id string) bool {
	s.reindex()
	return len(s.children[id]) > 0
}

// reindex rebuilds the parent -> children adjacency index.
func (s *Scene) reindex() {
	if s.children != nil {
		return
	}
	s.children = make(map[string][]string)
	for _, id := range s.order {
		n := s.nodes[id]
		if n.ParentID != "" {
			s.children[n.ParentID] = append(s.children[n.ParentID], id)
		}
	}
}

// Ancestors returns the containment chain of a node, nearest parent first,
// excluding the node itself. Returns ErrUnknownNode for an unknown ID,
// ErrUnknownParent when the chain dangles, and ErrContainmentCycle when the
// chain loops.
func (s *Scene) Ancestors(id string) ([]string, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	var chain []string
	visited := map[string]bool{id: true}
	for n.ParentID != "" {
		pid := n.ParentID
		if visited[pid] {
			return nil, fmt.Errorf("%w: at %s", ErrContainmentCycle, pid)
		}
		p, ok := s.nodes[pid]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, pid)
		}
		visited[pid] = true
		chain = append(chain, pid)
		n = p
	}
	return chain, nil
}

// Validate checks cross-node structural constraints: every ParentID must
// resolve to an existing node and the containment forest must be acyclic.
// The first violation found is returned, wrapped with the offending node ID.
func (s *Scene) Validate() error {
	for _, id := range s.order {
		if _, err := s.Ancestors(id); err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
	}
	for _, e := range s.edges {
		if _, ok := s.nodes[e.Source]; !ok {
			return fmt.Errorf("edge %s: %w: %s", e.ID, ErrUnknownSourceNode, e.Source)
		}
		if e.Target != "" {
			if _, ok := s.nodes[e.Target]; !ok {
				return fmt.Errorf("edge %s: %w: %s", e.ID, ErrUnknownTargetNode, e.Target)
			}
		}
	}
	return nil
}
