package geometry

import (
	"errors"
	"fmt"

	"github.com/canopyhq/canopy/pkg/scene"
)

var (
	// ErrNotRenderable is the common ancestor of every condition that makes
	// an edge silently unrenderable: a missing endpoint node, an unmeasured
	// endpoint, or a named port that does not resolve. Callers check with
	// errors.Is and skip the edge rather than failing the pass.
	ErrNotRenderable = errors.New("edge not renderable")

	// ErrMissingEndpoint wraps ErrNotRenderable for edges referencing a node
	// ID absent from the scene graph (e.g. the node was deleted).
	ErrMissingEndpoint = fmt.Errorf("%w: missing endpoint node", ErrNotRenderable)

	// ErrUnmeasuredEndpoint wraps ErrNotRenderable for endpoint nodes whose
	// size has not been reported yet. Resolution succeeds on a later pass
	// once the measurement arrives.
	ErrUnmeasuredEndpoint = fmt.Errorf("%w: endpoint not measured", ErrNotRenderable)

	// ErrUnknownPort wraps ErrNotRenderable for named ports that do not
	// exist on their node.
	ErrUnknownPort = fmt.Errorf("%w: unknown port", ErrNotRenderable)
)

// Endpoints are the resolved canvas-space anchor points of an edge.
// Provisional is set when either endpoint's offset depended on unmeasured
// container chrome.
type Endpoints struct {
	Source      scene.Point
	Target      scene.Point
	Provisional bool
}

// ResolveEdgeEndpoints maps an edge's logical endpoints to canvas
// coordinates.
//
// For each endpoint the port is selected as follows: a named port must exist
// on the node; with no name given, the node's sole declared port is used if
// there is exactly one; otherwise a side default applies (source
// bottom-center, target top-center). The port's local point is computed from
// the node's measured size and translated by the node's absolute position.
//
// Unrenderable conditions return an error matching [ErrNotRenderable];
// structural errors (containment cycle) pass through unchanged. The result
// is a pure function of the scene graph and measurements: repeated calls
// with unchanged inputs yield identical points.
func (r *Resolver) ResolveEdgeEndpoints(e scene.Edge) (Endpoints, error) {
	src, err := r.endpoint(e.Source, e.SourcePort, scene.SideBottom)
	if err != nil {
		return Endpoints{}, fmt.Errorf("edge %s: source %s: %w", e.ID, e.Source, err)
	}
	tgt, err := r.endpoint(e.Target, e.TargetPort, scene.SideTop)
	if err != nil {
		return Endpoints{}, fmt.Errorf("edge %s: target %s: %w", e.ID, e.Target, err)
	}
	return Endpoints{
		Source:      src.point,
		Target:      tgt.point,
		Provisional: src.provisional || tgt.provisional,
	}, nil
}

type resolvedEndpoint struct {
	point       scene.Point
	provisional bool
}

func (r *Resolver) endpoint(nodeID, portID string, defaultSide scene.Side) (resolvedEndpoint, error) {
	n, ok := r.Scene.Node(nodeID)
	if !ok {
		return resolvedEndpoint{}, ErrMissingEndpoint
	}
	if !n.Initialized() {
		return resolvedEndpoint{}, ErrUnmeasuredEndpoint
	}

	local, err := portPoint(n, portID, defaultSide)
	if err != nil {
		return resolvedEndpoint{}, err
	}

	abs, provisional, err := r.AbsolutePosition(nodeID)
	if err != nil {
		return resolvedEndpoint{}, err
	}
	return resolvedEndpoint{point: abs.Add(local), provisional: provisional}, nil
}

// portPoint computes a port's position relative to the node's top-left
// corner.
func portPoint(n *scene.Node, portID string, defaultSide scene.Side) (scene.Point, error) {
	if portID != "" {
		p, ok := n.Port(portID)
		if !ok {
			return scene.Point{}, fmt.Errorf("%w: %s", ErrUnknownPort, portID)
		}
		return declaredPortPoint(n, p), nil
	}
	if len(n.Ports) == 1 {
		return declaredPortPoint(n, n.Ports[0]), nil
	}
	return sidePoint(*n.Size, defaultSide), nil
}

func declaredPortPoint(n *scene.Node, p scene.Port) scene.Point {
	if p.HasOffset {
		return p.Offset
	}
	return sidePoint(*n.Size, p.Side)
}

// sidePoint returns the midpoint of a node side for the given size.
func sidePoint(s scene.Size, side scene.Side) scene.Point {
	switch side {
	case scene.SideTop:
		return scene.Point{X: s.Width / 2, Y: 0}
	case scene.SideRight:
		return scene.Point{X: s.Width, Y: s.Height / 2}
	case scene.SideBottom:
		return scene.Point{X: s.Width / 2, Y: s.Height}
	case scene.SideLeft:
		return scene.Point{X: 0, Y: s.Height / 2}
	default:
		return scene.Point{X: s.Width / 2, Y: s.Height / 2}
	}
}
