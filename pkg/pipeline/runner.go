package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/canopyhq/canopy/pkg/cache"
	"github.com/canopyhq/canopy/pkg/geometry"
	"github.com/canopyhq/canopy/pkg/observability"
	"github.com/canopyhq/canopy/pkg/scene"
	"github.com/canopyhq/canopy/pkg/stacking"
)

// Runner executes recomputation passes with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pass results. Multiple goroutines can safely use the same Runner
// with different snapshots.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	CacheTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		CacheTTL: DefaultCacheTTL,
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Resolve runs one recomputation pass for the snapshot, consulting the
// cache first. Returns an error only when the snapshot document itself is
// malformed; every per-element condition degrades to sentinels inside the
// result.
func (r *Runner) Resolve(ctx context.Context, snap Snapshot) (*Geometry, error) {
	start := time.Now()

	s, err := scene.ToScene(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("snapshot document: %w", err)
	}

	observability.Pass().OnPassStart(ctx, s.NodeCount(), s.EdgeCount())

	key, hashable := r.snapshotKey(snap)
	if hashable {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var geo Geometry
			if err := json.Unmarshal(data, &geo); err == nil {
				observability.Cache().OnCacheHit(ctx, "geometry")
				geo.Stats.CacheHit = true
				geo.Stats.Duration = time.Since(start)
				observability.Pass().OnPassComplete(ctx, s.NodeCount(), s.EdgeCount(), geo.Stats.Duration, nil)
				return &geo, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "geometry")
	}

	geo := r.resolve(ctx, s, snap)
	geo.Stats.Duration = time.Since(start)

	if hashable {
		if data, err := json.Marshal(geo); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.CacheTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "geometry", len(data))
			}
		}
	}

	r.Logger.Info("resolved geometry",
		"nodes", geo.Stats.NodeCount,
		"edges", geo.Stats.EdgeCount,
		"renderable", geo.Stats.RenderableEdges,
		"duration", geo.Stats.Duration)

	observability.Pass().OnPassComplete(ctx, s.NodeCount(), s.EdgeCount(), geo.Stats.Duration, nil)
	return geo, nil
}

// resolve is the uncached pass. Offsets for every node are resolved before
// stacking and edge geometry run; the latter two depend on containment
// relationships, not on each other.
func (r *Runner) resolve(ctx context.Context, s *scene.Scene, snap Snapshot) *Geometry {
	resolver := geometry.NewResolver(s, snap.Chrome)

	var touched *stacking.TouchList
	if snap.Touched != nil {
		touched = stacking.NewTouchList(snap.Touched...)
	}
	assigner := stacking.NewAssigner(s, touched)

	geo := &Geometry{
		Nodes: make(map[string]NodeGeometry, s.NodeCount()),
		Edges: make(map[string]EdgeGeometry, s.EdgeCount()),
	}
	geo.Stats.NodeCount = s.NodeCount()
	geo.Stats.EdgeCount = s.EdgeCount()

	// Stage 1: offsets for all nodes.
	for _, n := range s.Nodes() {
		ng := NodeGeometry{Initialized: n.Initialized()}
		off, err := resolver.ResolveOffset(n.ID)
		if err != nil {
			// Contained: the affected node keeps a neutral zero offset and
			// the pass continues for everything else.
			r.diagnoseOffset(ctx, geo, n.ID, err)
			ng.Position = n.Position
		} else {
			ng.Offset = off.Point()
			ng.Position = n.Position.Add(off.Point())
			ng.Provisional = off.Provisional
		}
		geo.Nodes[n.ID] = ng
	}

	// Stage 2: stacking order.
	for id, ng := range geo.Nodes {
		ng.Z = assigner.ZIndexForNode(id)
		geo.Nodes[id] = ng
	}

	// Stage 2: edge endpoints, stacking, and visibility.
	for _, e := range s.Edges() {
		geo.Edges[e.ID] = r.resolveEdge(ctx, resolver, assigner, snap, geo, e)
	}

	return geo
}

func (r *Runner) resolveEdge(ctx context.Context, resolver *geometry.Resolver, assigner *stacking.Assigner, snap Snapshot, geo *Geometry, e scene.Edge) EdgeGeometry {
	eg := EdgeGeometry{Z: assigner.ZIndexForEdge(e)}

	if e.InProgress() {
		// The connection is still being drawn; the interaction collaborator
		// renders it from the pointer position, so there is nothing to
		// resolve yet. It stays visible and on top.
		eg.Reason = "connection in progress"
		eg.Visible = true
		return eg
	}

	ep, err := resolver.ResolveEdgeEndpoints(e)
	if err != nil {
		eg.Reason = reasonFor(err)
		if !errors.Is(err, geometry.ErrNotRenderable) {
			// Structural violation below one of the endpoints.
			geo.Diagnostics = append(geo.Diagnostics, Diagnostic{
				Level: "error", Element: e.ID, Message: err.Error(),
			})
			r.Logger.Error("edge endpoint resolution failed", "edge", e.ID, "err", err)
		} else {
			r.Logger.Debug("edge not renderable", "edge", e.ID, "reason", eg.Reason)
		}
		observability.Pass().OnEdgeDegraded(ctx, e.ID, eg.Reason)
		return eg
	}

	eg.Renderable = true
	eg.Provisional = ep.Provisional
	src, tgt := ep.Source, ep.Target
	eg.Source, eg.Target = &src, &tgt
	geo.Stats.RenderableEdges++

	eg.Visible = snap.Viewport == nil || snap.Viewport.EdgeVisible(ep)
	if eg.Visible {
		geo.Stats.VisibleEdges++
	}
	return eg
}

func (r *Runner) diagnoseOffset(ctx context.Context, geo *Geometry, nodeID string, err error) {
	level := "warn"
	if errors.Is(err, scene.ErrContainmentCycle) {
		level = "error"
		observability.Pass().OnStructuralViolation(ctx, nodeID, err)
		r.Logger.Error("containment cycle detected", "node", nodeID, "err", err)
	} else {
		r.Logger.Warn("offset resolution degraded", "node", nodeID, "err", err)
	}
	geo.Diagnostics = append(geo.Diagnostics, Diagnostic{
		Level: level, Element: nodeID, Message: err.Error(),
	})
}

// snapshotKey computes the cache key for a snapshot. hashable is false when
// the snapshot cannot be serialized, in which case caching is skipped.
func (r *Runner) snapshotKey(snap Snapshot) (string, bool) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", false
	}
	var vp string
	if snap.Viewport != nil {
		if v, err := json.Marshal(snap.Viewport); err == nil {
			vp = string(v)
		}
	}
	return r.Keyer.SnapshotKey(cache.Hash(data), cache.SnapshotKeyOpts{
		Touched:  snap.Touched,
		Viewport: vp,
	}), true
}

// reasonFor maps endpoint resolution errors to stable reason strings for
// API consumers.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, geometry.ErrMissingEndpoint):
		return "missing endpoint"
	case errors.Is(err, geometry.ErrUnmeasuredEndpoint):
		return "endpoint not measured"
	case errors.Is(err, geometry.ErrUnknownPort):
		return "unknown port"
	case errors.Is(err, scene.ErrContainmentCycle):
		return "containment cycle"
	default:
		return "not renderable"
	}
}
