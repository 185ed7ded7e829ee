package ui

import (
	"testing"
	"time"
)

func TestFrameSchedulerRunsEachFrameOnce(t *testing.T) {
	s := newFrameScheduler(30)
	if s.interval != time.Second/30 {
		t.Fatalf("interval = %v, want %v", s.interval, time.Second/30)
	}

	runs := 0
	id := s.RequestFrame(func() { runs++ })
	if s.Cmd() == nil {
		t.Fatal("expected a tick for the requested frame")
	}
	if s.Cmd() != nil {
		t.Fatal("expected no tick once the frame is armed")
	}

	if !s.Fire(id) {
		t.Fatal("expected pending frame to run")
	}
	if s.Fire(id) {
		t.Fatal("expected frame to run only once")
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestFrameSchedulerIgnoresCancelledTicks(t *testing.T) {
	s := newFrameScheduler(60)
	ran := false
	id := s.RequestFrame(func() { ran = true })
	s.CancelFrame(id)

	if s.Fire(id) || ran {
		t.Fatal("expected cancelled frame not to run")
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}
}

func TestFrameSchedulerIssuesDistinctIDs(t *testing.T) {
	s := newFrameScheduler(0)
	a := s.RequestFrame(func() {})
	b := s.RequestFrame(func() {})
	if a == b {
		t.Fatalf("expected distinct ids, got %d twice", a)
	}
	if s.interval != time.Second {
		t.Fatalf("interval = %v, want 1s for a non-positive rate", s.interval)
	}
}
