package meshing

import (
	"math"
	"testing"

	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// faceCell is one unit face covered by a quad.
type faceCell struct {
	dir   world.Direction
	plane int
	i, j  int
}

func directionOf(t testing.TB, n mgl32.Vec3) world.Direction {
	t.Helper()
	for _, d := range world.Directions {
		if d.Normal().ApproxEqual(n) {
			return d
		}
	}
	t.Fatalf("normal %v is not axis aligned", n)
	return 0
}

// cellsByMaterial expands every quad of m into unit faces and fails on overlap.
func cellsByMaterial(t testing.TB, m *Mesh) map[faceCell]world.MaterialID {
	t.Helper()
	out := make(map[faceCell]world.MaterialID)
	for q := 0; q < m.Quads; q++ {
		base := int(m.Indices[q*6])
		d := directionOf(t, m.Normals[base])
		axis := d.Axis()
		u, v := d.PlaneAxes()

		minU, minV := math.MaxInt, math.MaxInt
		maxU, maxV := math.MinInt, math.MinInt
		for k := 0; k < 4; k++ {
			p := m.Positions[base+k]
			minU, maxU = min(minU, int(p[u])), max(maxU, int(p[u]))
			minV, maxV = min(minV, int(p[v])), max(maxV, int(p[v]))
		}
		plane := int(m.Positions[base][axis])
		for j := minV; j < maxV; j++ {
			for i := minU; i < maxU; i++ {
				c := faceCell{dir: d, plane: plane, i: i, j: j}
				_, dup := out[c]
				require.False(t, dup, "quads overlap at %+v", c)
				out[c] = m.Materials[q]
			}
		}
	}
	return out
}

func quadsPerDirection(t testing.TB, m *Mesh) map[world.Direction]int {
	t.Helper()
	out := make(map[world.Direction]int)
	for q := 0; q < m.Quads; q++ {
		out[directionOf(t, m.Normals[int(m.Indices[q*6])])]++
	}
	return out
}

func defaultOptions() Options {
	return Options{Materials: registry.Defaults()}
}

func mustMesh(t testing.TB, m Mesher, c *world.Chunk, src world.NeighborSource) *Mesh {
	t.Helper()
	mesh, err := m.GenerateMesh(c, src)
	require.NoError(t, err)
	require.NotNil(t, mesh)
	return mesh
}
