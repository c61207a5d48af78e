// Package pipeline runs the geometry recomputation pass for Canopy.
//
// A pass takes a [Snapshot], the raw scene document plus measured chrome,
// touched-scene list, and viewport supplied by the interaction
// collaborators, and produces a [Geometry] result: an absolute position and
// stacking
// order per node, and resolved endpoints, stacking order, and visibility per
// edge. The pass is pure and synchronous; it is re-executed in full on any
// observable input change, so results are always derived fresh from current
// state and nothing needs rolling back when a gesture is aborted.
//
// Within one pass, offsets are resolved for every node before stacking and
// edge geometry consume the containment structure. Recoverable conditions
// (missing nodes, unmeasured sizes, unknown ports, unmeasured chrome)
// degrade to documented sentinels; only a containment cycle is loudly
// diagnosed, and even that is contained to the affected subtree.
//
// # Usage
//
// Create a Runner and execute a pass:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	geo, err := runner.Resolve(ctx, snapshot)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	z := geo.Nodes["n1"].Z
package pipeline

import (
	"time"

	"github.com/canopyhq/canopy/pkg/geometry"
	"github.com/canopyhq/canopy/pkg/scene"
)

// DefaultCacheTTL is how long computed geometry stays cached.
// Geometry is cheap to recompute; the cache exists to absorb bursts of
// identical snapshots (e.g. several clients viewing one diagram).
const DefaultCacheTTL = 15 * time.Minute

// Snapshot is the complete input to one recomputation pass.
//
// Touched carries the recency-ordered touched-scene list, front = most
// recent. A nil slice means touch tracking is unavailable entirely and every
// element falls back to the default stacking baseline; an empty non-nil
// slice means tracking is active but nothing has been touched yet. JSON
// preserves the distinction: an omitted field decodes to nil, "[]" to empty.
type Snapshot struct {
	Document scene.Document     `json:"document"`
	Chrome   scene.ChromeMap    `json:"chrome,omitempty"`
	Touched  []string           `json:"touched,omitempty"`
	Viewport *geometry.Viewport `json:"viewport,omitempty"`
}

// NodeGeometry is the computed presentation state for one node.
type NodeGeometry struct {
	// Offset is the translation contributed by ancestor containers.
	Offset scene.Point `json:"offset"`
	// Position is the node's absolute top-left corner (offset + local).
	Position scene.Point `json:"position"`
	// Z is the stacking order.
	Z int `json:"z"`
	// Provisional marks geometry derived from unmeasured container chrome;
	// consumers must re-resolve once measurements arrive.
	Provisional bool `json:"provisional,omitempty"`
	// Initialized reports whether the node's own size has been measured.
	Initialized bool `json:"initialized"`
}

// EdgeGeometry is the computed presentation state for one edge.
// Source and Target are only set when the edge is renderable.
type EdgeGeometry struct {
	Renderable  bool         `json:"renderable"`
	Source      *scene.Point `json:"source,omitempty"`
	Target      *scene.Point `json:"target,omitempty"`
	Z           int          `json:"z"`
	Visible     bool         `json:"visible"`
	Provisional bool         `json:"provisional,omitempty"`
	// Reason explains why the edge is not renderable; empty otherwise.
	Reason string `json:"reason,omitempty"`
}

// Diagnostic is a non-fatal condition surfaced during a pass.
type Diagnostic struct {
	Level   string `json:"level"` // "warn" or "error"
	Element string `json:"element"`
	Message string `json:"message"`
}

// Stats aggregates pass-level measurements.
type Stats struct {
	NodeCount       int           `json:"node_count"`
	EdgeCount       int           `json:"edge_count"`
	RenderableEdges int           `json:"renderable_edges"`
	VisibleEdges    int           `json:"visible_edges"`
	Duration        time.Duration `json:"duration"`
	CacheHit        bool          `json:"cache_hit"`
}

// Geometry is the complete output of one recomputation pass, handed to the
// rendering collaborator. It is ephemeral presentation state: derived,
// never persisted.
type Geometry struct {
	Nodes       map[string]NodeGeometry `json:"nodes"`
	Edges       map[string]EdgeGeometry `json:"edges"`
	Diagnostics []Diagnostic            `json:"diagnostics,omitempty"`
	Stats       Stats                   `json:"stats"`
}
