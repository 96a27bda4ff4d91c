package profiling

import (
	"sync"
	"testing"
	"time"
)

func TestTrackerTopNOrdering(t *testing.T) {
	tr := NewTracker()
	tr.Add("fast", 500*time.Microsecond)
	tr.Add("slow", 4200*time.Microsecond)
	tr.Add("mid", 2*time.Millisecond)

	if got, want := tr.TopN(2), "slow:4.2ms, mid:2ms"; got != want {
		t.Fatalf("TopN(2) = %q, want %q", got, want)
	}
	if got, want := tr.TopN(10), "slow:4.2ms, mid:2ms, fast:0.5ms"; got != want {
		t.Fatalf("TopN(10) = %q, want %q", got, want)
	}
}

func TestTrackerResetTick(t *testing.T) {
	tr := NewTracker()
	tr.Add("a", time.Millisecond)
	tr.Add("a", time.Millisecond)
	if tr.Count("a") != 2 {
		t.Fatalf("count = %d, want 2", tr.Count("a"))
	}
	if tr.Snapshot()["a"] != 2*time.Millisecond {
		t.Fatalf("total = %v, want 2ms", tr.Snapshot()["a"])
	}
	tr.ResetTick()
	if len(tr.Snapshot()) != 0 || tr.Count("a") != 0 {
		t.Fatal("expected empty tracker after ResetTick")
	}
	if tr.TopN(3) != "" {
		t.Fatalf("TopN on empty tracker = %q", tr.TopN(3))
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Track("work")()
			}
		}()
	}
	wg.Wait()
	if tr.Count("work") != 800 {
		t.Fatalf("count = %d, want 800", tr.Count("work"))
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tr.Track("x")()
	tr.ResetTick()
	if tr.Snapshot() != nil || tr.TopN(1) != "" || tr.Count("x") != 0 {
		t.Fatal("nil tracker should record nothing")
	}
}

func TestDefaultTracker(t *testing.T) {
	ResetTick()
	defer ResetTick()
	Default().Add("default", 3*time.Millisecond)
	if got := TopN(1); got != "default:3ms" {
		t.Fatalf("TopN = %q", got)
	}
	if _, ok := Snapshot()["default"]; !ok {
		t.Fatal("missing default entry")
	}
}
