package meshing

import (
	"testing"

	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertFaceWindingMatchesNormal(t *testing.T) {
	var e FaceEmitter
	for _, d := range world.Directions {
		buf := NewMeshBuffer(1)
		require.NoError(t, e.InsertFace(buf, d, [3]int{1, 2, 3}, 3, 2, registry.Stone))
		require.Equal(t, 4, buf.VertexCount())
		require.Len(t, buf.Indices, 6)

		for tri := 0; tri < 2; tri++ {
			a := buf.Positions[buf.Indices[tri*3]]
			b := buf.Positions[buf.Indices[tri*3+1]]
			c := buf.Positions[buf.Indices[tri*3+2]]
			n := b.Sub(a).Cross(c.Sub(a)).Normalize()
			assert.True(t, n.ApproxEqual(d.Normal()), "direction %v triangle %d: got %v", d, tri, n)
		}
		for _, n := range buf.Normals {
			assert.Equal(t, d.Normal(), n)
		}
	}
}

func TestInsertFacePlaneOffset(t *testing.T) {
	var e FaceEmitter
	origin := [3]int{4, 5, 6}
	for _, d := range world.Directions {
		buf := NewMeshBuffer(1)
		require.NoError(t, e.InsertFace(buf, d, origin, 1, 1, registry.Stone))

		axis := d.Axis()
		want := float32(origin[axis])
		if d.IsPositive() {
			want++
		}
		for _, p := range buf.Positions {
			assert.Equal(t, want, p[axis], "direction %v", d)
		}
	}
}

func TestInsertFaceExtent(t *testing.T) {
	var e FaceEmitter
	buf := NewMeshBuffer(1)
	require.NoError(t, e.InsertFace(buf, world.ZNegative, [3]int{2, 3, 0}, 5, 4, registry.Stone))

	lo := mgl32.Vec3{99, 99, 99}
	hi := mgl32.Vec3{-99, -99, -99}
	for _, p := range buf.Positions {
		for i := 0; i < 3; i++ {
			lo[i], hi[i] = min(lo[i], p[i]), max(hi[i], p[i])
		}
	}
	assert.Equal(t, mgl32.Vec3{2, 3, 0}, lo)
	assert.Equal(t, mgl32.Vec3{7, 7, 0}, hi)
}

func TestInsertFaceIndexBase(t *testing.T) {
	var e FaceEmitter
	buf := NewMeshBuffer(2)
	require.NoError(t, e.InsertFace(buf, world.YPositive, [3]int{}, 1, 1, registry.Stone))
	require.NoError(t, e.InsertFace(buf, world.YNegative, [3]int{}, 1, 1, registry.Dirt))

	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, buf.Indices)
	assert.Equal(t, []world.MaterialID{registry.Stone, registry.Dirt}, buf.Materials)
	assert.Equal(t, 2, buf.QuadCount())
	assert.NoError(t, buf.Validate())
}

func maxUV(buf *MeshBuffer) mgl32.Vec2 {
	var m mgl32.Vec2
	for _, uv := range buf.UVs {
		m[0], m[1] = max(m[0], uv[0]), max(m[1], uv[1])
	}
	return m
}

func TestInsertFaceUVModes(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(world.Material{ID: 10, Name: "brick", TextureScale: 0.5}))

	tile := FaceEmitter{Materials: reg}
	buf := NewMeshBuffer(1)
	require.NoError(t, tile.InsertFace(buf, world.XPositive, [3]int{}, 3, 2, 10))
	assert.Equal(t, mgl32.Vec2{1.5, 1}, maxUV(buf))

	plain := FaceEmitter{}
	buf = NewMeshBuffer(1)
	require.NoError(t, plain.InsertFace(buf, world.XPositive, [3]int{}, 3, 2, 10))
	assert.Equal(t, mgl32.Vec2{3, 2}, maxUV(buf))

	stretch := FaceEmitter{UV: UVStretch, Materials: reg}
	buf = NewMeshBuffer(1)
	require.NoError(t, stretch.InsertFace(buf, world.XPositive, [3]int{}, 3, 2, 10))
	assert.Equal(t, mgl32.Vec2{1, 1}, maxUV(buf))
}

func TestInsertFaceRejectsInvalidInput(t *testing.T) {
	var e FaceEmitter
	buf := NewMeshBuffer(1)
	assert.ErrorIs(t, e.InsertFace(buf, world.Direction(6), [3]int{}, 1, 1, registry.Stone), ErrInvalidFace)
	assert.ErrorIs(t, e.InsertFace(buf, world.XPositive, [3]int{}, 0, 1, registry.Stone), ErrInvalidFace)
	assert.ErrorIs(t, e.InsertFace(buf, world.XPositive, [3]int{}, 1, -1, registry.Stone), ErrInvalidFace)
	assert.Zero(t, buf.VertexCount())
	assert.Empty(t, buf.Indices)
}

func TestInsertFaceVertexBudget(t *testing.T) {
	e := FaceEmitter{MaxVertices: 4}
	buf := NewMeshBuffer(2)
	require.NoError(t, e.InsertFace(buf, world.XPositive, [3]int{}, 1, 1, registry.Stone))
	assert.ErrorIs(t, e.InsertFace(buf, world.XNegative, [3]int{}, 1, 1, registry.Stone), ErrVertexBudgetExceeded)
	// Nothing partial is left behind.
	assert.Equal(t, 4, buf.VertexCount())
	assert.Len(t, buf.Indices, 6)
	assert.Len(t, buf.Materials, 1)
}

func TestMeshBufferValidate(t *testing.T) {
	var e FaceEmitter
	buf := NewMeshBuffer(1)
	require.NoError(t, e.InsertFace(buf, world.XPositive, [3]int{}, 1, 1, registry.Stone))
	require.NoError(t, buf.Validate())

	buf.Indices[2] = 9
	assert.ErrorIs(t, buf.Validate(), ErrInvalidBuffer)

	buf.Indices[2] = 2
	buf.Normals = buf.Normals[:3]
	assert.ErrorIs(t, buf.Validate(), ErrInvalidBuffer)
}

func TestMeshBufferBuildAndReset(t *testing.T) {
	var e FaceEmitter
	buf := NewMeshBuffer(1)
	require.NoError(t, e.InsertFace(buf, world.ZPositive, [3]int{}, 2, 2, registry.Grass))
	buf.CustomModels = append(buf.CustomModels, Voxel{X: 1, Material: registry.Torch})

	coord := world.ChunkCoord{X: 1, Y: -2, Z: 3}
	mesh := buf.Build(coord)
	assert.Equal(t, coord, mesh.Coord)
	assert.Equal(t, 1, mesh.Quads)
	assert.Equal(t, 4, mesh.VertexCount())
	assert.Len(t, mesh.CustomModels, 1)
	assert.Zero(t, buf.VertexCount())
	assert.Nil(t, buf.CustomModels)

	require.NoError(t, e.InsertFace(buf, world.ZPositive, [3]int{}, 1, 1, registry.Grass))
	buf.Reset()
	assert.Zero(t, buf.QuadCount())
	assert.Empty(t, buf.Materials)
}

func TestMeshChecksum(t *testing.T) {
	var e FaceEmitter
	build := func(mat world.MaterialID) *Mesh {
		buf := NewMeshBuffer(1)
		require.NoError(t, e.InsertFace(buf, world.XPositive, [3]int{}, 1, 1, mat))
		return buf.Build(world.ChunkCoord{})
	}
	assert.Equal(t, build(registry.Stone).Checksum(), build(registry.Stone).Checksum())
	assert.NotEqual(t, build(registry.Stone).Checksum(), build(registry.Dirt).Checksum())

	var nilMesh *Mesh
	assert.Zero(t, nilMesh.Checksum())
	assert.True(t, nilMesh.Empty())
}

func TestParseUVMode(t *testing.T) {
	for in, want := range map[string]UVMode{"": UVTile, "tile": UVTile, "Stretch": UVStretch} {
		got, err := ParseUVMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want.String(), got.String())
	}
	_, err := ParseUVMode("wrap")
	assert.Error(t, err)
}
