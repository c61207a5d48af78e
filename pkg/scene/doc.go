// Package scene provides the in-memory model for nested node-and-edge
// diagrams.
//
// A scene graph is a forest of nodes where any node may reference a parent
// container node ("scene") by ID. A node's Position is expressed relative to
// its parent's content origin, or relative to the canvas origin when the node
// has no parent. Nodes carry an optional measured Size (unknown until the
// layout collaborator reports it) and a set of named Ports used as edge
// endpoint anchors.
//
// The Scene type is an arena: nodes are stored in an id → record map, with a
// derived children index rebuilt on demand so repeated child lookups stay
// linear per recomputation pass. Edges form a flat list keyed by ID.
//
// # Structural Validation
//
// AddNode and AddEdge enforce local constraints (non-empty unique IDs,
// existing edge endpoints). Cross-node constraints (parent references that
// resolve, acyclic containment chains) are checked by Validate, because
// snapshots arrive node-by-node in arbitrary order and a parent may be added
// after its children.
//
// Scene is not safe for concurrent use without external synchronization; all
// mutation is expected to flow through a single interaction event path.
package scene
