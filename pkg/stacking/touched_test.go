package stacking

import (
	"slices"
	"testing"
)

func TestTouchListOrdering(t *testing.T) {
	l := &TouchList{}
	l.Touch("s1")
	l.Touch("s2")
	l.Touch("s3")

	if got := l.IDs(); !slices.Equal(got, []string{"s3", "s2", "s1"}) {
		t.Errorf("IDs() = %v, want most recent first", got)
	}

	// Re-touching promotes without duplicating.
	l.Touch("s1")
	if got := l.IDs(); !slices.Equal(got, []string{"s1", "s3", "s2"}) {
		t.Errorf("after re-touch IDs() = %v", got)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}

	if r, ok := l.Rank("s1"); !ok || r != 0 {
		t.Errorf("Rank(s1) = %d, %v", r, ok)
	}
	if r, ok := l.Rank("s2"); !ok || r != 2 {
		t.Errorf("Rank(s2) = %d, %v", r, ok)
	}
	if _, ok := l.Rank("never"); ok {
		t.Error("untouched scene must not have a rank")
	}
}

func TestTouchListIgnoresEmpty(t *testing.T) {
	l := &TouchList{}
	l.Touch("")
	if l.Len() != 0 {
		t.Error("empty id must be ignored")
	}
}

func TestNewTouchListSeedsFrontFirst(t *testing.T) {
	l := NewTouchList("s1", "s2", "s3")
	if got := l.IDs(); !slices.Equal(got, []string{"s1", "s2", "s3"}) {
		t.Errorf("IDs() = %v, want seed order preserved", got)
	}

	l = NewTouchList("a", "b", "a")
	if got := l.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("duplicate seed: IDs() = %v", got)
	}
}

func TestTouchListReset(t *testing.T) {
	l := NewTouchList("s1", "s2")
	l.Reset()
	if l.Len() != 0 {
		t.Errorf("Len() after Reset = %d", l.Len())
	}
	l.Touch("s9")
	if r, ok := l.Rank("s9"); !ok || r != 0 {
		t.Error("list must be usable after Reset")
	}
}

func TestTouchListIDsIsCopy(t *testing.T) {
	l := NewTouchList("s1", "s2")
	ids := l.IDs()
	ids[0] = "mutated"
	if got := l.IDs(); got[0] != "s1" {
		t.Error("IDs() must return a copy, not the backing slice")
	}
}
