// Package geometry resolves scene-graph coordinates into canvas space.
//
// Node positions are stored relative to their parent container's content
// origin. The Resolver walks a node's containment chain and accumulates the
// translation each ancestor contributes: the ancestor's own resolved offset,
// its local position, its measured content padding (both axes), and its
// measured header height (vertical axis only). On top of offsets, the
// package maps logical edge endpoints (node + optional named port) to
// concrete canvas points, and tests edge bounding boxes against the visible
// viewport region.
//
// All functions are pure with respect to their inputs and synchronous:
// results are recomputed from the current scene graph and measurements on
// every pass, never cached across structural changes.
package geometry
