package profiling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Tracker accumulates named durations for one tick. It is safe for
// concurrent use; mesh workers report into the same tracker.
type Tracker struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

var defaultTracker = NewTracker()

// Default returns the process-wide tracker.
func Default() *Tracker { return defaultTracker }

// Track returns a stop function that records the elapsed time under name.
// Usage: defer tracker.Track("meshing.Tick")()
// A nil tracker records nothing.
func (t *Tracker) Track(name string) func() {
	if t == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.Add(name, time.Since(start)) }
}

// Add records d under name.
func (t *Tracker) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.totals[name] += d
	t.counts[name]++
	t.mu.Unlock()
}

// ResetTick clears the totals. Call at the start of each tick.
func (t *Tracker) ResetTick() {
	if t == nil {
		return
	}
	t.mu.Lock()
	clear(t.totals)
	clear(t.counts)
	t.mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func (t *Tracker) Snapshot() map[string]time.Duration {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Duration, len(t.totals))
	for k, v := range t.totals {
		out[k] = v
	}
	return out
}

// Count returns how many samples were recorded under name this tick.
func (t *Tracker) Count(name string) int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[name]
}

// TopN formats the n largest totals, longest first.
// Example: "meshing.GenerateMesh:4.2ms, meshing.Install:0.3ms"
func (t *Tracker) TopN(n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	ss := t.Snapshot()
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	slices.SortFunc(list, func(a, b pair) int {
		if a.dur != b.dur {
			if a.dur > b.dur {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	n = max(0, min(n, len(list)))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		parts = append(parts, p.name+":"+formatMs(p.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	s := fmt.Sprintf("%.1f", float64(d.Microseconds())/1000.0)
	return strings.TrimSuffix(s, ".0") + "ms"
}

// Track records into the default tracker.
func Track(name string) func() { return defaultTracker.Track(name) }

// ResetTick clears the default tracker.
func ResetTick() { defaultTracker.ResetTick() }

// Snapshot copies the default tracker's totals.
func Snapshot() map[string]time.Duration { return defaultTracker.Snapshot() }

// TopN formats the default tracker's largest totals.
func TopN(n int) string { return defaultTracker.TopN(n) }
