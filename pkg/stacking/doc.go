// Package stacking assigns paint order to diagram elements.
//
// The model is recency-based: the interaction collaborator reports "this
// container scene was just touched" events into a TouchList (an ordered set,
// most recent first), and the Assigner converts a scene's rank in that list
// into an integer z-index. The user's latest interaction visually wins
// without an explicit bring-to-front command.
//
// Within a single recency tier the assignment establishes a strict
// three-tier visual order: container chrome below contained nodes and edges,
// and an actively-dragged connection above everything.
//
// Z-indexes are ephemeral presentation state: recomputed per pass from the
// touch list and the scene graph, never persisted.
package stacking
