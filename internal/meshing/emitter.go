package meshing

import (
	"errors"
	"fmt"
	"strings"

	"voxmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidFace is returned for faces with a non-positive extent or direction.
var ErrInvalidFace = errors.New("invalid face")

// UVMode selects how texture coordinates span an emitted quad.
type UVMode int

const (
	// UVTile spans [0,width]x[0,height] scaled by the material, so textures repeat per voxel.
	UVTile UVMode = iota
	// UVStretch spans [0,1]x[0,1] whatever the quad size.
	UVStretch
)

func (m UVMode) String() string {
	if m == UVStretch {
		return "stretch"
	}
	return "tile"
}

// ParseUVMode parses "tile" or "stretch".
func ParseUVMode(s string) (UVMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tile":
		return UVTile, nil
	case "stretch":
		return UVStretch, nil
	}
	return UVTile, fmt.Errorf("unknown uv mode %q", s)
}

// crossSign is the sign of U x V for the plane axes of each face axis:
// Y x Z = +X, X x Z = -Y, X x Y = +Z.
var crossSign = [3]int{1, -1, 1}

// FaceEmitter appends quads to a MeshBuffer.
type FaceEmitter struct {
	UV        UVMode
	Materials world.MaterialLookup
	// MaxVertices caps the buffer. Zero or anything above MaxVertices means MaxVertices.
	MaxVertices int
}

func (e FaceEmitter) vertexLimit() int {
	if e.MaxVertices <= 0 || e.MaxVertices > MaxVertices {
		return MaxVertices
	}
	return e.MaxVertices
}

func (e FaceEmitter) uvScale(mat world.MaterialID) float32 {
	if e.Materials == nil {
		return 1
	}
	m, ok := e.Materials.Material(mat)
	if !ok {
		return 1
	}
	return m.UVScale()
}

// InsertFace appends one width x height quad facing d whose minimum corner voxel
// is origin. width runs along the first plane axis of d, height along the second.
// The face lies on the far side of origin for positive directions and on the
// near side for negative ones. Triangles wind counter-clockwise seen from the
// outside. Nothing is written when an error is returned.
func (e FaceEmitter) InsertFace(buf *MeshBuffer, d world.Direction, origin [3]int, width, height int, mat world.MaterialID) error {
	if !d.Valid() {
		return fmt.Errorf("%w: direction %d", ErrInvalidFace, d)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFace, width, height)
	}
	if limit := e.vertexLimit(); buf.VertexCount()+4 > limit {
		return fmt.Errorf("%w: %d vertices + 4 > %d", ErrVertexBudgetExceeded, buf.VertexCount(), limit)
	}

	axis := d.Axis()
	u, v := d.PlaneAxes()

	p0 := mgl32.Vec3{float32(origin[0]), float32(origin[1]), float32(origin[2])}
	if d.IsPositive() {
		p0[axis]++
	}
	var du, dv mgl32.Vec3
	du[u] = float32(width)
	dv[v] = float32(height)

	corners := [4]mgl32.Vec3{p0, p0.Add(du), p0.Add(du).Add(dv), p0.Add(dv)}

	su, sv := float32(1), float32(1)
	if e.UV == UVTile {
		s := e.uvScale(mat)
		su, sv = float32(width)*s, float32(height)*s
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {su, 0}, {su, sv}, {0, sv}}

	if d.Sign() != crossSign[axis] {
		corners[1], corners[3] = corners[3], corners[1]
		uvs[1], uvs[3] = uvs[3], uvs[1]
	}

	base := uint16(buf.VertexCount())
	n := d.Normal()
	buf.Positions = append(buf.Positions, corners[:]...)
	buf.Normals = append(buf.Normals, n, n, n, n)
	buf.UVs = append(buf.UVs, uvs[:]...)
	buf.Indices = append(buf.Indices,
		base, base+1, base+2,
		base+2, base+3, base,
	)
	buf.Materials = append(buf.Materials, mat)
	return nil
}
