package geometry

import (
	"fmt"

	"github.com/canopyhq/canopy/pkg/scene"
)

// Offset is the canvas-space translation contributed by a node's ancestor
// containers. Provisional is set when at least one ancestor's chrome has not
// been measured yet: the value is usable but must be re-resolved once
// measurements arrive.
type Offset struct {
	X, Y        float64
	Provisional bool
}

// Point returns the offset as a scene point, dropping the provisional flag.
func (o Offset) Point() scene.Point { return scene.Point{X: o.X, Y: o.Y} }

// Resolver computes canvas-space geometry for a scene graph.
// Chrome supplies measured container padding and header heights; a nil
// Chrome treats every container as unmeasured (all results provisional).
//
// A Resolver is stateless between calls and safe to recreate per
// recomputation pass.
type Resolver struct {
	Scene  *scene.Scene
	Chrome scene.ChromeProvider
}

// NewResolver creates a resolver over a scene graph and chrome measurements.
func NewResolver(s *scene.Scene, chrome scene.ChromeProvider) *Resolver {
	return &Resolver{Scene: s, Chrome: chrome}
}

// ResolveOffset computes the cumulative translation from a node's local
// coordinate frame to the canvas frame, excluding the node's own local
// position. A node with no parent resolves to (0, 0).
//
// Each ancestor container contributes its own resolved offset plus its local
// position, its content padding on both axes, and its header height on the
// vertical axis only. Missing chrome measurements contribute zero and mark
// the result provisional.
//
// The walk is iterative with a visited set: a containment cycle aborts with
// scene.ErrContainmentCycle and a zero offset instead of looping, and an
// unresolvable parent reference aborts with scene.ErrUnknownParent.
func (r *Resolver) ResolveOffset(nodeID string) (Offset, error) {
	n, ok := r.Scene.Node(nodeID)
	if !ok {
		return Offset{}, fmt.Errorf("%w: %s", scene.ErrUnknownNode, nodeID)
	}

	var off Offset
	visited := map[string]bool{n.ID: true}
	for n.ParentID != "" {
		pid := n.ParentID
		if visited[pid] {
			return Offset{}, fmt.Errorf("resolve offset for %s: %w: at %s", nodeID, scene.ErrContainmentCycle, pid)
		}
		p, ok := r.Scene.Node(pid)
		if !ok {
			return Offset{}, fmt.Errorf("resolve offset for %s: %w: %s", nodeID, scene.ErrUnknownParent, pid)
		}
		visited[pid] = true

		off.X += p.Position.X
		off.Y += p.Position.Y
		if c, measured := r.chrome(pid); measured {
			off.X += c.Padding
			off.Y += c.Padding + c.HeaderHeight
		} else {
			off.Provisional = true
		}
		n = p
	}
	return off, nil
}

// AbsolutePosition computes a node's top-left corner in canvas coordinates:
// its ancestor-contributed offset plus its own local position. Edge endpoint
// resolution builds on this.
func (r *Resolver) AbsolutePosition(nodeID string) (scene.Point, bool, error) {
	off, err := r.ResolveOffset(nodeID)
	if err != nil {
		return scene.Point{}, false, err
	}
	n, _ := r.Scene.Node(nodeID)
	return n.Position.Add(off.Point()), off.Provisional, nil
}

func (r *Resolver) chrome(sceneID string) (scene.Chrome, bool) {
	if r.Chrome == nil {
		return scene.Chrome{}, false
	}
	return r.Chrome.Chrome(sceneID)
}
