package world

// World ties a chunk store to a terrain generator.
type World struct {
	Store *ChunkStore
	gen   TerrainGenerator
}

// New creates a world that populates chunks with gen.
func New(gen TerrainGenerator) *World {
	return &World{
		Store: NewChunkStore(),
		gen:   gen,
	}
}

// NewEmpty creates a world whose chunks start as air.
func NewEmpty() *World {
	return New(nil)
}

// Generate loads the chunk at coord, populating and linking it if missing.
func (w *World) Generate(coord ChunkCoord) *Chunk {
	if c := w.Store.Chunk(coord); c != nil {
		return c
	}
	c := NewChunk(coord)
	if w.gen != nil {
		w.gen.PopulateChunk(c)
	}
	if !w.Store.AddChunk(c) {
		// Lost a race with another loader.
		return w.Store.Chunk(coord)
	}
	return c
}

// GenerateArea loads every chunk within radius (XZ, in chunks) of the centre
// column, for chunk Y levels minY..maxY inclusive. It returns how many chunks
// were newly created.
func (w *World) GenerateArea(cx, cz, radius, minY, maxY int) int {
	created := 0
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			for cy := minY; cy <= maxY; cy++ {
				coord := ChunkCoord{X: cx + dx, Y: cy, Z: cz + dz}
				if w.Store.HasChunk(coord) {
					continue
				}
				w.Generate(coord)
				created++
			}
		}
	}
	return created
}

// Get returns the material at world coordinates.
func (w *World) Get(x, y, z int) MaterialID {
	return w.Store.Get(x, y, z)
}

// Set sets the material at world coordinates.
func (w *World) Set(x, y, z int, id MaterialID) {
	w.Store.Set(x, y, z, id)
}

// SurfaceHeightAt returns the generator's surface height, or 0 without one.
func (w *World) SurfaceHeightAt(x, z int) int {
	if w.gen == nil {
		return 0
	}
	return w.gen.HeightAt(x, z)
}
