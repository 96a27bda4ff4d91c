package world

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// TerrainGenerator fills freshly created chunks. Real world generation lives
// with the host; this is used for demo worlds and benchmarks.
type TerrainGenerator interface {
	HeightAt(worldX, worldZ int) int
	PopulateChunk(c *Chunk)
}

// Palette names the materials the demo generator places.
type Palette struct {
	Stone MaterialID
	Dirt  MaterialID
	Grass MaterialID
	Water MaterialID
}

// Generator handles heightmap terrain generation.
type Generator struct {
	palette     Palette
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	seaLevel    int

	// noise returns a height sample in [0,1].
	noise func(x, z float64) float64
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64, palette Palette) *Generator {
	g := newGenerator(seed, palette)
	g.noise = valueNoise{
		seed:        seed,
		octaves:     g.octaves,
		persistence: g.persistence,
		lacunarity:  g.lacunarity,
	}.At
	return g
}

// NewPerlinGenerator creates a generator sampling gradient (Perlin) noise
// instead of value noise. Terrain is smoother with fewer plateaus.
func NewPerlinGenerator(seed int64, palette Palette) *Generator {
	g := newGenerator(seed, palette)
	p := perlin.NewPerlin(2, 2, int32(g.octaves), seed)
	g.noise = func(x, z float64) float64 {
		n := (p.Noise2D(x, z) + 1) / 2
		return math.Max(0, math.Min(1, n))
	}
	return g
}

func newGenerator(seed int64, palette Palette) *Generator {
	return &Generator{
		palette:     palette,
		seed:        seed,
		scale:       1.0 / 48.0,
		baseHeight:  12,
		amp:         20,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		seaLevel:    10,
	}
}

// SetSeaLevel changes the world Y below which empty columns are flooded.
// A negative level disables water.
func (g *Generator) SetSeaLevel(level int) {
	g.seaLevel = level
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := g.noise(x, z)
	height := float64(g.baseHeight) + (n-0.5)*2*g.amp
	if height < 0 {
		height = 0
	}
	return int(math.Floor(height))
}

// PopulateChunk fills a chunk using the noise heightmap.
func (g *Generator) PopulateChunk(c *Chunk) {
	baseX := c.Coord.X * ChunkSizeX
	baseY := c.Coord.Y * ChunkSizeY
	baseZ := c.Coord.Z * ChunkSizeZ

	c.Lock()
	for lx := 0; lx < ChunkSizeX; lx++ {
		for lz := 0; lz < ChunkSizeZ; lz++ {
			height := g.HeightAt(baseX+lx, baseZ+lz)
			for ly := 0; ly < ChunkSizeY; ly++ {
				wy := baseY + ly
				b := c.BlockAtMut(lx, ly, lz)
				switch {
				case wy < height-3:
					b.Material = g.palette.Stone
				case wy < height:
					b.Material = g.palette.Dirt
				case wy == height && height >= g.seaLevel:
					b.Material = g.palette.Grass
				case wy == height:
					b.Material = g.palette.Dirt
				case wy < g.seaLevel:
					b.Material = g.palette.Water
				default:
					b.Material = AirID
				}
			}
		}
	}
	c.Unlock()
	c.MarkChanged()
}

// FlatGenerator fills every column up to a fixed height with one material.
type FlatGenerator struct {
	height   int
	material MaterialID
}

// NewFlatGenerator creates a flat generator.
func NewFlatGenerator(height int, material MaterialID) *FlatGenerator {
	return &FlatGenerator{height: height, material: material}
}

// HeightAt returns the fixed surface height.
func (g *FlatGenerator) HeightAt(_, _ int) int {
	return g.height
}

// PopulateChunk fills blocks at or below the surface height.
func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	baseY := c.Coord.Y * ChunkSizeY
	c.Lock()
	for ly := 0; ly < ChunkSizeY; ly++ {
		if baseY+ly > g.height {
			break
		}
		for lz := 0; lz < ChunkSizeZ; lz++ {
			for lx := 0; lx < ChunkSizeX; lx++ {
				c.BlockAtMut(lx, ly, lz).Material = g.material
			}
		}
	}
	c.Unlock()
	c.MarkChanged()
}
