package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "working")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after context cancellation")
	}
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "working")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancelled after context timeout")
	}
}

func TestSpinnerStopMessages(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	s.StopWithSuccess("done")

	s = newSpinner("working")
	s.Start()
	s.StopWithError("failed")
}
