package meshing

import (
	"encoding/binary"
	"math"

	"voxmesh/internal/world"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the renderable geometry of one chunk, in chunk-local coordinates.
type Mesh struct {
	Coord     world.ChunkCoord
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint16
	Materials []world.MaterialID
	Quads     int

	CustomModels []Voxel
}

// Empty reports whether the mesh has no cube geometry.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Checksum hashes every buffer so identical meshes compare equal.
func (m *Mesh) Checksum() uint64 {
	if m == nil {
		return 0
	}
	d := xxhash.New()
	scratch := make([]byte, 0, 64)

	scratch = binary.LittleEndian.AppendUint32(scratch, uint32(len(m.Positions)))
	scratch = binary.LittleEndian.AppendUint32(scratch, uint32(len(m.Indices)))
	d.Write(scratch)

	writeVec3s(d, scratch, m.Positions)
	writeVec3s(d, scratch, m.Normals)
	for _, uv := range m.UVs {
		s := scratch[:0]
		s = binary.LittleEndian.AppendUint32(s, math.Float32bits(uv[0]))
		s = binary.LittleEndian.AppendUint32(s, math.Float32bits(uv[1]))
		d.Write(s)
	}
	for _, idx := range m.Indices {
		d.Write(binary.LittleEndian.AppendUint16(scratch[:0], idx))
	}
	for _, id := range m.Materials {
		d.Write(binary.LittleEndian.AppendUint16(scratch[:0], uint16(id)))
	}
	for _, v := range m.CustomModels {
		s := scratch[:0]
		s = binary.LittleEndian.AppendUint32(s, uint32(v.X))
		s = binary.LittleEndian.AppendUint32(s, uint32(v.Y))
		s = binary.LittleEndian.AppendUint32(s, uint32(v.Z))
		s = binary.LittleEndian.AppendUint16(s, uint16(v.Material))
		d.Write(s)
	}
	return d.Sum64()
}

func writeVec3s(d *xxhash.Digest, scratch []byte, vs []mgl32.Vec3) {
	for _, v := range vs {
		s := scratch[:0]
		s = binary.LittleEndian.AppendUint32(s, math.Float32bits(v[0]))
		s = binary.LittleEndian.AppendUint32(s, math.Float32bits(v[1]))
		s = binary.LittleEndian.AppendUint32(s, math.Float32bits(v[2]))
		d.Write(s)
	}
}
