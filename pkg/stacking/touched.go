package stacking

import "slices"

// TouchList is the recency-ordered list of touched container scenes:
// front = most recently touched, no duplicates. It starts empty, grows only
// through Touch events, and never shrinks except on Reset.
//
// The zero value is an empty, usable list. TouchList is a plain value object
// owned by the surrounding state store, not a hidden global, so z-order
// assignment stays a pure function of explicit inputs.
type TouchList struct {
	ids []string
}

// NewTouchList creates a touch list seeded with ids, front first.
// Duplicates after the first occurrence are dropped.
func NewTouchList(ids ...string) *TouchList {
	t := &TouchList{}
	for i := len(ids) - 1; i >= 0; i-- {
		t.Touch(ids[i])
	}
	return t
}

// Touch moves id to the front, inserting it if absent.
// Empty ids are ignored.
func (t *TouchList) Touch(id string) {
	if id == "" {
		return
	}
	if i := slices.Index(t.ids, id); i >= 0 {
		t.ids = slices.Delete(t.ids, i, i+1)
	}
	t.ids = slices.Insert(t.ids, 0, id)
}

// Rank returns a scene's position in the list (0 = most recent).
// ok is false for untouched scenes; callers must treat that as the
// lowest-priority rank, not as rank 0.
func (t *TouchList) Rank(id string) (int, bool) {
	i := slices.Index(t.ids, id)
	return i, i >= 0
}

// Len returns the number of touched scenes.
func (t *TouchList) Len() int { return len(t.ids) }

// IDs returns the touched scene ids, most recent first.
// The returned slice is a copy.
func (t *TouchList) IDs() []string { return slices.Clone(t.ids) }

// Reset clears the list.
func (t *TouchList) Reset() { t.ids = nil }
