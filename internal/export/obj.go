package export

import (
	"bufio"
	"fmt"
	"io"

	"voxmesh/internal/meshing"
	"voxmesh/internal/world"
)

// OBJWriter streams chunk meshes as one Wavefront OBJ file. Each chunk
// becomes an object placed at its world position, and faces are grouped by
// material with usemtl.
type OBJWriter struct {
	w         *bufio.Writer
	materials world.MaterialLookup
	base      int
	objects   int
}

// NewOBJWriter writes to w. materials names the usemtl groups and may be nil.
func NewOBJWriter(w io.Writer, materials world.MaterialLookup) *OBJWriter {
	return &OBJWriter{w: bufio.NewWriter(w), materials: materials}
}

func (o *OBJWriter) materialName(id world.MaterialID) string {
	if o.materials != nil {
		if m, ok := o.materials.Material(id); ok && m.Name != "" {
			return m.Name
		}
	}
	return fmt.Sprintf("material_%d", id)
}

// WriteMesh appends one chunk mesh. Empty meshes are skipped.
func (o *OBJWriter) WriteMesh(m *meshing.Mesh) error {
	if m.Empty() {
		return nil
	}
	if o.objects == 0 {
		fmt.Fprintln(o.w, "# voxmesh chunk export")
	}
	o.objects++

	off := [3]float32{
		float32(m.Coord.X * world.ChunkSizeX),
		float32(m.Coord.Y * world.ChunkSizeY),
		float32(m.Coord.Z * world.ChunkSizeZ),
	}
	fmt.Fprintf(o.w, "o chunk_%d_%d_%d\n", m.Coord.X, m.Coord.Y, m.Coord.Z)
	for _, p := range m.Positions {
		fmt.Fprintf(o.w, "v %g %g %g\n", p[0]+off[0], p[1]+off[1], p[2]+off[2])
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(o.w, "vt %g %g\n", uv[0], uv[1])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(o.w, "vn %g %g %g\n", n[0], n[1], n[2])
	}

	current := world.MaterialID(0)
	for q := 0; q < m.Quads; q++ {
		if mat := m.Materials[q]; q == 0 || mat != current {
			current = mat
			fmt.Fprintf(o.w, "usemtl %s\n", o.materialName(mat))
		}
		for t := 0; t < 2; t++ {
			tri := m.Indices[q*6+t*3 : q*6+t*3+3]
			a, b, c := o.base+int(tri[0])+1, o.base+int(tri[1])+1, o.base+int(tri[2])+1
			fmt.Fprintf(o.w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
	}
	o.base += m.VertexCount()

	// bufio keeps the first write error.
	_, err := o.w.WriteString("")
	return err
}

// Objects returns how many non-empty meshes were written.
func (o *OBJWriter) Objects() int { return o.objects }

// Flush writes buffered output.
func (o *OBJWriter) Flush() error {
	return o.w.Flush()
}

// WriteOBJ writes meshes to w in order.
func WriteOBJ(w io.Writer, materials world.MaterialLookup, meshes ...*meshing.Mesh) error {
	o := NewOBJWriter(w, materials)
	for _, m := range meshes {
		if err := o.WriteMesh(m); err != nil {
			return fmt.Errorf("write chunk %v: %w", m.Coord, err)
		}
	}
	return o.Flush()
}
