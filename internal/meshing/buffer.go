package meshing

import (
	"errors"
	"fmt"

	"voxmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxVertices is the most vertices a 16-bit index buffer can address.
const MaxVertices = 1 << 16

// ErrVertexBudgetExceeded is returned when a chunk mesh would need more
// vertices than its index space allows. Geometry is never truncated.
var ErrVertexBudgetExceeded = errors.New("vertex budget exceeded")

// ErrInvalidBuffer is wrapped by Validate failures.
var ErrInvalidBuffer = errors.New("invalid mesh buffer")

// Voxel is a block position with its material.
type Voxel struct {
	X, Y, Z  int
	Material world.MaterialID
}

// MeshBuffer accumulates vertex attributes and indices while a mesh is built.
// Positions, Normals and UVs are parallel arrays.
type MeshBuffer struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint16
	// Materials holds one entry per quad, in emission order.
	Materials []world.MaterialID

	// CustomModels lists voxels left to the host's model renderer.
	CustomModels []Voxel
}

// NewMeshBuffer preallocates room for quads faces.
func NewMeshBuffer(quads int) *MeshBuffer {
	return &MeshBuffer{
		Positions: make([]mgl32.Vec3, 0, quads*4),
		Normals:   make([]mgl32.Vec3, 0, quads*4),
		UVs:       make([]mgl32.Vec2, 0, quads*4),
		Indices:   make([]uint16, 0, quads*6),
		Materials: make([]world.MaterialID, 0, quads),
	}
}

// VertexCount returns the number of vertices appended so far.
func (b *MeshBuffer) VertexCount() int {
	return len(b.Positions)
}

// QuadCount returns the number of quads appended so far.
func (b *MeshBuffer) QuadCount() int {
	return len(b.Indices) / 6
}

// Reset empties the buffer keeping its capacity.
func (b *MeshBuffer) Reset() {
	b.Positions = b.Positions[:0]
	b.Normals = b.Normals[:0]
	b.UVs = b.UVs[:0]
	b.Indices = b.Indices[:0]
	b.Materials = b.Materials[:0]
	b.CustomModels = b.CustomModels[:0]
}

// Validate checks the parallel-array and index invariants.
func (b *MeshBuffer) Validate() error {
	n := len(b.Positions)
	if len(b.Normals) != n || len(b.UVs) != n {
		return fmt.Errorf("%w: %d positions, %d normals, %d uvs", ErrInvalidBuffer, n, len(b.Normals), len(b.UVs))
	}
	if n > MaxVertices {
		return fmt.Errorf("%w: %d vertices", ErrVertexBudgetExceeded, n)
	}
	if len(b.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrInvalidBuffer, len(b.Indices))
	}
	if len(b.Materials)*6 != len(b.Indices) {
		return fmt.Errorf("%w: %d quad materials for %d indices", ErrInvalidBuffer, len(b.Materials), len(b.Indices))
	}
	for i, idx := range b.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of %d vertices", ErrInvalidBuffer, idx, i, n)
		}
	}
	return nil
}

// Build moves the buffer contents into a Mesh and leaves the buffer empty.
func (b *MeshBuffer) Build(coord world.ChunkCoord) *Mesh {
	m := &Mesh{
		Coord:        coord,
		Positions:    b.Positions,
		Normals:      b.Normals,
		UVs:          b.UVs,
		Indices:      b.Indices,
		Materials:    b.Materials,
		CustomModels: b.CustomModels,
		Quads:        b.QuadCount(),
	}
	*b = MeshBuffer{}
	return m
}
