package config

import "sync"

// WorldGenSettings holds the demo world configuration
type WorldGenSettings struct {
	mu       sync.RWMutex
	seed     int64
	radius   int
	minY     int
	maxY     int
	seaLevel int
}

var globalWorldGenSettings = &WorldGenSettings{
	seed:     1337,
	radius:   3,
	minY:     0,
	maxY:     2,
	seaLevel: 10,
}

// GetSeed returns the terrain seed
func GetSeed() int64 {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seed
}

// SetSeed sets the terrain seed
func SetSeed(seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seed = seed
}

// GetRadius returns the generated area radius in chunks
func GetRadius() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.radius
}

// SetRadius sets the generated area radius in chunks
func SetRadius(radius int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()

	// Clamp to reasonable values
	if radius < 0 {
		radius = 0
	}
	if radius > 32 {
		radius = 32
	}

	globalWorldGenSettings.radius = radius
}

// GetVerticalRange returns the chunk Y levels to generate, inclusive
func GetVerticalRange() (minY, maxY int) {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.minY, globalWorldGenSettings.maxY
}

// SetVerticalRange sets the chunk Y levels to generate. The bounds are
// swapped when given in the wrong order.
func SetVerticalRange(minY, maxY int) {
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.minY = minY
	globalWorldGenSettings.maxY = maxY
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seaLevel
}

// SetSeaLevel sets the sea level
func SetSeaLevel(level int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seaLevel = level
}
