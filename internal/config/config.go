package config

import (
	"strings"
	"sync"
	"time"
)

// MesherSettings holds meshing configuration
type MesherSettings struct {
	mu          sync.RWMutex
	strategy    string
	workers     int
	queueSize   int
	uvMode      string
	maxVertices int
	slowTick    time.Duration
}

var globalMesherSettings = &MesherSettings{
	strategy:    "greedy",
	workers:     4,
	queueSize:   256,
	uvMode:      "tile",
	maxVertices: 1 << 16,
	slowTick:    50 * time.Millisecond,
}

// GetStrategy returns the meshing strategy name
func GetStrategy() string {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.strategy
}

// SetStrategy sets the meshing strategy name. Empty keeps the current one.
func SetStrategy(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()
	globalMesherSettings.strategy = name
}

// GetWorkers returns the number of mesh worker goroutines
func GetWorkers() int {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.workers
}

// SetWorkers sets the number of mesh workers
func SetWorkers(n int) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()

	// Clamp to reasonable values
	if n < 1 {
		n = 1
	}
	if n > 64 {
		n = 64
	}

	globalMesherSettings.workers = n
}

// GetQueueSize returns the mesh job queue capacity
func GetQueueSize() int {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.queueSize
}

// SetQueueSize sets the mesh job queue capacity
func SetQueueSize(n int) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()
	if n < 0 {
		n = 0
	}
	globalMesherSettings.queueSize = n
}

// GetUVMode returns the UV mode name ("tile" or "stretch")
func GetUVMode() string {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.uvMode
}

// SetUVMode sets the UV mode name. Empty keeps the current one.
func SetUVMode(mode string) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return
	}
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()
	globalMesherSettings.uvMode = mode
}

// GetMaxVertices returns the per-chunk vertex budget
func GetMaxVertices() int {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.maxVertices
}

// SetMaxVertices sets the per-chunk vertex budget, clamped to one quad and
// the 16-bit index range.
func SetMaxVertices(n int) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()
	if n < 4 {
		n = 4
	}
	if n > 1<<16 {
		n = 1 << 16
	}
	globalMesherSettings.maxVertices = n
}

// GetSlowTick returns the duration above which a tick is logged as slow
func GetSlowTick() time.Duration {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.slowTick
}

// SetSlowTick sets the slow tick threshold. Zero disables the warning.
func SetSlowTick(d time.Duration) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()
	if d < 0 {
		d = 0
	}
	globalMesherSettings.slowTick = d
}
