package world

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// Chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 16
	ChunkSizeZ = 16

	ChunkVolume = ChunkSizeX * ChunkSizeY * ChunkSizeZ
)

// ChunkSize holds the dimensions indexed by axis.
var ChunkSize = [3]int{ChunkSizeX, ChunkSizeY, ChunkSizeZ}

// ErrOutOfRange is wrapped by every OutOfRangeError.
var ErrOutOfRange = errors.New("block coordinate out of range")

// OutOfRangeError reports a local block coordinate outside the chunk.
// Accessors panic with it: an invalid coordinate is a programming error.
type OutOfRangeError struct {
	X, Y, Z int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("block (%d, %d, %d) outside %dx%dx%d chunk", e.X, e.Y, e.Z, ChunkSizeX, ChunkSizeY, ChunkSizeZ)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// ChunkCoord is the position of a chunk in chunk units. It is also the handle
// used for neighbour links.
type ChunkCoord struct {
	X, Y, Z int
}

// Neighbor returns the coordinate of the adjacent chunk in direction d.
func (c ChunkCoord) Neighbor(d Direction) ChunkCoord {
	o := d.Offset()
	return ChunkCoord{X: c.X + o[0], Y: c.Y + o[1], Z: c.Z + o[2]}
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Less orders coordinates by z, then y, then x.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Index linearizes a local coordinate, x fastest then y then z.
func Index(x, y, z int) int {
	return ChunkSizeX*(ChunkSizeY*z+y) + x
}

// InBounds reports whether a local coordinate lies inside a chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSizeX && y >= 0 && y < ChunkSizeY && z >= 0 && z < ChunkSizeZ
}

// CheckBounds returns an *OutOfRangeError for coordinates outside the chunk.
func CheckBounds(x, y, z int) error {
	if !InBounds(x, y, z) {
		return &OutOfRangeError{X: x, Y: y, Z: z}
	}
	return nil
}

func mustIndex(x, y, z int) int {
	if !InBounds(x, y, z) {
		panic(&OutOfRangeError{X: x, Y: y, Z: z})
	}
	return Index(x, y, z)
}

// Chunk is a dense 16x16x16 block grid with links to its six neighbours.
//
// BlockAt and BlockAtMut are raw accessors: when a chunk is shared between
// goroutines, wrap them in RLock/Lock. SetBlock, Fill, Snapshot and BorderPlane
// lock internally.
type Chunk struct {
	Coord ChunkCoord

	mu     sync.RWMutex
	blocks [ChunkVolume]Block

	linkMu    sync.RWMutex
	neighbors [NumDirections]ChunkCoord
	linked    [NumDirections]bool

	// version counts mutations; clean is the highest version already meshed.
	version atomic.Uint64
	clean   atomic.Uint64
}

// NewChunk creates an all-air chunk. It starts dirty so it is meshed at least once.
func NewChunk(coord ChunkCoord) *Chunk {
	c := &Chunk{Coord: coord}
	c.version.Store(1)
	return c
}

// Lock acquires the block write lock.
func (c *Chunk) Lock() { c.mu.Lock() }

// Unlock releases the block write lock.
func (c *Chunk) Unlock() { c.mu.Unlock() }

// RLock acquires the block read lock.
func (c *Chunk) RLock() { c.mu.RLock() }

// RUnlock releases the block read lock.
func (c *Chunk) RUnlock() { c.mu.RUnlock() }

// BlockAt returns the block at local coordinates. It panics with
// *OutOfRangeError when the coordinate is outside the chunk.
func (c *Chunk) BlockAt(x, y, z int) Block {
	return c.blocks[mustIndex(x, y, z)]
}

// BlockAtMut returns a pointer to the block at local coordinates.
// Writing through it does not mark the chunk changed: callers must follow up
// with MarkChanged.
func (c *Chunk) BlockAtMut(x, y, z int) *Block {
	return &c.blocks[mustIndex(x, y, z)]
}

// SetBlock sets the material at local coordinates and marks the chunk changed
// if the value differs.
func (c *Chunk) SetBlock(x, y, z int, id MaterialID) {
	idx := mustIndex(x, y, z)
	c.mu.Lock()
	old := c.blocks[idx].Material
	c.blocks[idx].Material = id
	c.mu.Unlock()
	if old != id {
		c.MarkChanged()
	}
}

// Fill sets every block to id and marks the chunk changed.
func (c *Chunk) Fill(id MaterialID) {
	c.mu.Lock()
	for i := range c.blocks {
		c.blocks[i].Material = id
	}
	c.mu.Unlock()
	c.MarkChanged()
}

// IsUniform reports whether every block holds the same material.
func (c *Chunk) IsUniform() (MaterialID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uniform(&c.blocks)
}

// IsEmpty reports whether the chunk is all air.
func (c *Chunk) IsEmpty() bool {
	id, ok := c.IsUniform()
	return ok && id == AirID
}

func uniform(blocks *[ChunkVolume]Block) (MaterialID, bool) {
	first := blocks[0].Material
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Material != first {
			return 0, false
		}
	}
	return first, true
}

// SetNeighbor links the chunk adjacent in direction d. The link is a handle,
// never ownership.
func (c *Chunk) SetNeighbor(d Direction, coord ChunkCoord) {
	c.linkMu.Lock()
	c.neighbors[d] = coord
	c.linked[d] = true
	c.linkMu.Unlock()
}

// ClearNeighbor removes the link in direction d.
func (c *Chunk) ClearNeighbor(d Direction) {
	c.linkMu.Lock()
	c.neighbors[d] = ChunkCoord{}
	c.linked[d] = false
	c.linkMu.Unlock()
}

// Neighbor returns the linked neighbour handle in direction d, if any.
func (c *Chunk) Neighbor(d Direction) (ChunkCoord, bool) {
	c.linkMu.RLock()
	defer c.linkMu.RUnlock()
	return c.neighbors[d], c.linked[d]
}

// HasNeighbors reports whether any neighbour is linked.
func (c *Chunk) HasNeighbors() bool {
	c.linkMu.RLock()
	defer c.linkMu.RUnlock()
	for _, l := range c.linked {
		if l {
			return true
		}
	}
	return false
}

// HasChanged reports whether the chunk changed since the last successful remesh.
func (c *Chunk) HasChanged() bool {
	return c.version.Load() != c.clean.Load()
}

// MarkChanged flags the chunk for remeshing.
func (c *Chunk) MarkChanged() {
	c.version.Add(1)
}

// ChangeVersion returns the mutation counter. Read it before meshing and pass
// it to ClearChangedThrough afterwards.
func (c *Chunk) ChangeVersion() uint64 {
	return c.version.Load()
}

// ClearChanged marks every change observed so far as meshed.
func (c *Chunk) ClearChanged() {
	c.ClearChangedThrough(c.version.Load())
}

// ClearChangedThrough marks changes up to version v as meshed. Marks made
// after v was read keep the chunk dirty. It reports whether the chunk is clean.
func (c *Chunk) ClearChangedThrough(v uint64) bool {
	for {
		cur := c.clean.Load()
		if v <= cur {
			break
		}
		if c.clean.CompareAndSwap(cur, v) {
			break
		}
	}
	return !c.HasChanged()
}

// Snapshot copies the block grid under the read lock.
func (c *Chunk) Snapshot() *Snapshot {
	s := &Snapshot{Coord: c.Coord}
	c.mu.RLock()
	s.Blocks = c.blocks
	c.mu.RUnlock()
	return s
}

// BorderPlane copies the layer of blocks on the face of the chunk pointing in d.
func (c *Chunk) BorderPlane(d Direction) Plane {
	p := newPlane(d)
	axis := d.Axis()
	layer := 0
	if d.IsPositive() {
		layer = ChunkSize[axis] - 1
	}
	u, v := d.PlaneAxes()

	c.mu.RLock()
	defer c.mu.RUnlock()
	var pos [3]int
	pos[axis] = layer
	for j := 0; j < p.Height; j++ {
		pos[v] = j
		for i := 0; i < p.Width; i++ {
			pos[u] = i
			p.Cells[j*p.Width+i] = c.blocks[Index(pos[0], pos[1], pos[2])].Material
		}
	}
	return p
}
