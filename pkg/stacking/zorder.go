package stacking

import (
	"math"

	"github.com/canopyhq/canopy/pkg/scene"
)

const (
	// BaseZ is the baseline z-index for every element belonging to a
	// container lineage.
	BaseZ = 10

	// OverlayBonus lifts contained nodes and edges above their container's
	// own chrome within the same recency tier.
	OverlayBonus = 5

	// DefaultZ is the fallback z-index used when no touched-scene tracking
	// is supplied at all, matching the baseline stacking of untouched,
	// non-nested content.
	DefaultZ = 3

	// MaxZ is the highest representable stacking value. A connection that is
	// actively being drawn always receives MaxZ so it renders above
	// everything for the duration of the drag.
	MaxZ = math.MaxInt32
)

// Assigner computes z-indexes for nodes, container scenes, and edges.
// Touched may be nil, meaning touch tracking is unavailable entirely (not
// just empty); every assignment then falls back to DefaultZ.
type Assigner struct {
	Scene   *scene.Scene
	Touched *TouchList
}

// NewAssigner creates an assigner over a scene graph and touch list.
func NewAssigner(s *scene.Scene, touched *TouchList) *Assigner {
	return &Assigner{Scene: s, Touched: touched}
}

// ZIndexForNode computes the stacking order for a node or container scene.
//
// The value is BaseZ plus the scene's ordinal contribution ((N-r)*10 for a
// scene at rank r in a touch list of length N, 0 when untouched) plus
// OverlayBonus when the node is contained in a parent. More recently touched
// scenes therefore stack strictly above less recent ones, and overlay nodes
// always clear their own container's chrome.
func (a *Assigner) ZIndexForNode(nodeID string) int {
	if a.Touched == nil {
		return DefaultZ
	}
	z := BaseZ + a.ordinal(a.containingScene(nodeID))
	if n, ok := a.Scene.Node(nodeID); ok && n.ParentID != "" {
		z += OverlayBonus
	}
	return z
}

// ZIndexForEdge computes the stacking order for an edge.
//
// An edge whose target endpoint is not yet resolved is being drawn right now
// and returns MaxZ unconditionally. Otherwise the edge adopts the better
// (minimum) rank of its two endpoints' containing scenes (a touched scene
// beats an untouched one, two untouched scenes contribute nothing) and adds
// OverlayBonus so edges clear container chrome. Ties with overlay nodes are
// acceptable and left to paint order.
func (a *Assigner) ZIndexForEdge(e scene.Edge) int {
	if e.InProgress() {
		return MaxZ
	}
	if a.Touched == nil {
		return DefaultZ
	}

	srcRank, srcOK := a.Touched.Rank(a.containingScene(e.Source))
	tgtRank, tgtOK := a.Touched.Rank(a.containingScene(e.Target))

	contribution := 0
	switch {
	case srcOK && tgtOK:
		contribution = a.ordinalForRank(min(srcRank, tgtRank))
	case srcOK:
		contribution = a.ordinalForRank(srcRank)
	case tgtOK:
		contribution = a.ordinalForRank(tgtRank)
	}
	return BaseZ + contribution + OverlayBonus
}

// containingScene returns the scene that owns a node for recency purposes:
// the node's own id when it is itself top-level, otherwise its nearest
// existing ancestor. A dangling parent reference falls back to the node
// itself.
func (a *Assigner) containingScene(nodeID string) string {
	n, ok := a.Scene.Node(nodeID)
	if !ok || n.ParentID == "" {
		return nodeID
	}
	if _, ok := a.Scene.Node(n.ParentID); !ok {
		return nodeID
	}
	return n.ParentID
}

func (a *Assigner) ordinal(sceneID string) int {
	r, ok := a.Touched.Rank(sceneID)
	if !ok {
		return 0
	}
	return a.ordinalForRank(r)
}

func (a *Assigner) ordinalForRank(rank int) int {
	return (a.Touched.Len() - rank) * 10
}
