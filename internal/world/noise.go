package world

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// valueNoise is fractal 2D value noise. Lattice values come from hashing the
// cell coordinates, the seed and the octave, so any region can be sampled
// independently and repeatably.
type valueNoise struct {
	seed        int64
	octaves     int
	persistence float64
	lacunarity  float64
}

// lattice returns the value at an integer lattice point in [0,1).
func (n valueNoise) lattice(x, z int64, octave int) float64 {
	var key [24]byte
	binary.LittleEndian.PutUint64(key[0:], uint64(x))
	binary.LittleEndian.PutUint64(key[8:], uint64(z))
	binary.LittleEndian.PutUint64(key[16:], uint64(n.seed)^uint64(octave)<<56)
	return float64(xxhash.Sum64(key[:])>>11) / (1 << 53)
}

// smooth samples one octave with quintic-eased bilinear interpolation.
func (n valueNoise) smooth(x, z float64, octave int) float64 {
	fx, fz := math.Floor(x), math.Floor(z)
	x0, z0 := int64(fx), int64(fz)
	tx, tz := ease(x-fx), ease(z-fz)

	top := lerp(n.lattice(x0, z0, octave), n.lattice(x0+1, z0, octave), tx)
	bottom := lerp(n.lattice(x0, z0+1, octave), n.lattice(x0+1, z0+1, octave), tx)
	return lerp(top, bottom, tz)
}

// At sums the octaves and normalises the result back into [0,1].
func (n valueNoise) At(x, z float64) float64 {
	var sum, total float64
	amp, freq := 1.0, 1.0
	for o := 0; o < n.octaves; o++ {
		sum += amp * n.smooth(x*freq, z*freq, o)
		total += amp
		amp *= n.persistence
		freq *= n.lacunarity
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// ease is 6t^5 - 15t^4 + 10t^3: zero first and second derivatives at the
// lattice points keep slopes continuous across cells.
func ease(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
