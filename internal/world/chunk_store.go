package world

import (
	"slices"
	"sync"
)

// NeighborSource resolves neighbour handles to chunks. A nil result means the
// neighbour is not loaded, which meshing treats as air.
type NeighborSource interface {
	Chunk(coord ChunkCoord) *Chunk
}

// ChunkStore manages the storage and retrieval of chunks and keeps their
// neighbour links in sync.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Chunk returns the loaded chunk at coord or nil.
func (cs *ChunkStore) Chunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// GetChunk returns the chunk at the specified chunk coordinates.
// If the chunk doesn't exist and create is true, an empty one is created and linked.
func (cs *ChunkStore) GetChunk(chunkX, chunkY, chunkZ int, create bool) *Chunk {
	coord := ChunkCoord{X: chunkX, Y: chunkY, Z: chunkZ}
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if exists || !create {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[coord]; ok {
		return existing
	}
	chunk = NewChunk(coord)
	cs.insertLocked(chunk)
	return chunk
}

// AddChunk adds a pre-populated chunk to the store and links it with every
// loaded neighbour in both directions. It returns false if the slot is taken.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[chunk.Coord]; ok {
		return false
	}
	cs.insertLocked(chunk)
	return true
}

func (cs *ChunkStore) insertLocked(chunk *Chunk) {
	cs.chunks[chunk.Coord] = chunk
	cs.modCount++

	for _, d := range Directions {
		nc := chunk.Coord.Neighbor(d)
		nb, ok := cs.chunks[nc]
		if !ok {
			continue
		}
		chunk.SetNeighbor(d, nc)
		nb.SetNeighbor(d.Opposite(), chunk.Coord)
		// The neighbour's border faces were meshed against air until now.
		nb.MarkChanged()
	}
}

// RemoveChunk unloads the chunk at coord and unlinks its neighbours.
// The caller owns releasing any render resources tied to it.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	chunk, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++

	for _, d := range Directions {
		chunk.ClearNeighbor(d)
		if nb, ok := cs.chunks[coord.Neighbor(d)]; ok {
			nb.ClearNeighbor(d.Opposite())
			nb.MarkChanged()
		}
	}
	return chunk
}

// GetChunkFromBlockCoords returns the chunk containing the block at the specified world coordinates.
func (cs *ChunkStore) GetChunkFromBlockCoords(x, y, z int, create bool) *Chunk {
	return cs.GetChunk(floorDiv(x, ChunkSizeX), floorDiv(y, ChunkSizeY), floorDiv(z, ChunkSizeZ), create)
}

// Get returns the material at the specified world coordinates.
func (cs *ChunkStore) Get(x, y, z int) MaterialID {
	chunk := cs.GetChunkFromBlockCoords(x, y, z, false)
	if chunk == nil {
		return AirID
	}
	chunk.RLock()
	defer chunk.RUnlock()
	return chunk.BlockAt(mod(x, ChunkSizeX), mod(y, ChunkSizeY), mod(z, ChunkSizeZ)).Material
}

// IsAir checks if the block at the specified world coordinates is air.
func (cs *ChunkStore) IsAir(x, y, z int) bool {
	return cs.Get(x, y, z) == AirID
}

// Set sets the material at the specified world coordinates, creating the
// chunk if needed.
func (cs *ChunkStore) Set(x, y, z int, id MaterialID) {
	chunk := cs.GetChunkFromBlockCoords(x, y, z, true)

	localX := mod(x, ChunkSizeX)
	localY := mod(y, ChunkSizeY)
	localZ := mod(z, ChunkSizeZ)

	before := chunk.ChangeVersion()
	chunk.SetBlock(localX, localY, localZ, id)
	if chunk.ChangeVersion() == before {
		return
	}

	// Mark neighbor chunks dirty if we touched a border block
	local := [3]int{localX, localY, localZ}
	for _, d := range Directions {
		axis := d.Axis()
		if d.IsPositive() && local[axis] != ChunkSize[axis]-1 {
			continue
		}
		if d.IsNegative() && local[axis] != 0 {
			continue
		}
		if nb := cs.Chunk(chunk.Coord.Neighbor(d)); nb != nil {
			nb.MarkChanged()
		}
	}
}

// DirtyChunks returns the chunks that need remeshing ordered by coordinate.
func (cs *ChunkStore) DirtyChunks() []*Chunk {
	cs.mu.RLock()
	dirty := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		if c.HasChanged() {
			dirty = append(dirty, c)
		}
	}
	cs.mu.RUnlock()
	sortChunks(dirty)
	return dirty
}

// AllChunks returns every loaded chunk ordered by coordinate.
func (cs *ChunkStore) AllChunks() []*Chunk {
	cs.mu.RLock()
	all := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		all = append(all, c)
	}
	cs.mu.RUnlock()
	sortChunks(all)
	return all
}

func sortChunks(chunks []*Chunk) {
	slices.SortFunc(chunks, func(a, b *Chunk) int {
		switch {
		case a.Coord.Less(b.Coord):
			return -1
		case b.Coord.Less(a.Coord):
			return 1
		}
		return 0
	})
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// HasChunk checks if a chunk exists without creating it.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
