package meshing

import (
	"voxmesh/internal/world"
)

// GreedyMesher merges coplanar visible faces of the same material into
// maximal rectangles. For every direction and layer it builds a 2D mask over
// the face plane, then repeatedly takes the first set cell in scan order
// (first plane axis fastest), grows it along the first axis and then along
// the second while whole rows still match. The scan order makes the output
// deterministic for a given chunk content.
type GreedyMesher struct {
	opts Options
}

// NewGreedyMesher creates a greedy mesher.
func NewGreedyMesher(opts Options) *GreedyMesher {
	return &GreedyMesher{opts: opts}
}

// Name implements Mesher.
func (m *GreedyMesher) Name() string { return StrategyGreedy }

// GenerateMesh implements Mesher.
func (m *GreedyMesher) GenerateMesh(c *world.Chunk, src world.NeighborSource) (*Mesh, error) {
	return generate(c, src, m.opts, m.build)
}

func (m *GreedyMesher) build(vol *volume, buf *MeshBuffer) error {
	emit := m.opts.emitter()

	if id, ok := vol.snap.Uniform(); ok {
		if id == world.AirID {
			return nil
		}
		// A solid cube with nothing around it: six full faces.
		if vol.isolated() && vol.material(id).occludes {
			return m.buildSolid(emit, buf, id)
		}
	}

	var mask []world.MaterialID
	for _, d := range world.Directions {
		axis := d.Axis()
		u, v := d.PlaneAxes()
		su, sv := world.ChunkSize[u], world.ChunkSize[v]
		if cap(mask) < su*sv {
			mask = make([]world.MaterialID, su*sv)
		}
		mask = mask[:su*sv]

		for layer := 0; layer < world.ChunkSize[axis]; layer++ {
			visible := false
			for j := 0; j < sv; j++ {
				for i := 0; i < su; i++ {
					var pos [3]int
					pos[axis], pos[u], pos[v] = layer, i, j
					id, ok := vol.faceAt(pos, d)
					if ok {
						visible = true
					}
					mask[j*su+i] = id
				}
			}
			if !visible {
				continue
			}
			if err := mergeMask(emit, buf, d, layer, mask, su, sv); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeMask consumes mask, emitting one quad per maximal rectangle.
func mergeMask(emit FaceEmitter, buf *MeshBuffer, d world.Direction, layer int, mask []world.MaterialID, su, sv int) error {
	axis := d.Axis()
	u, v := d.PlaneAxes()

	for j := 0; j < sv; j++ {
		for i := 0; i < su; {
			id := mask[j*su+i]
			if id == world.AirID {
				i++
				continue
			}

			w := 1
			for i+w < su && mask[j*su+i+w] == id {
				w++
			}

			h := 1
		grow:
			for j+h < sv {
				row := (j + h) * su
				for k := i; k < i+w; k++ {
					if mask[row+k] != id {
						break grow
					}
				}
				h++
			}

			for jj := j; jj < j+h; jj++ {
				clear(mask[jj*su+i : jj*su+i+w])
			}

			var origin [3]int
			origin[axis], origin[u], origin[v] = layer, i, j
			if err := emit.InsertFace(buf, d, origin, w, h, id); err != nil {
				return err
			}
			i += w
		}
	}
	return nil
}

func (m *GreedyMesher) buildSolid(emit FaceEmitter, buf *MeshBuffer, id world.MaterialID) error {
	for _, d := range world.Directions {
		axis := d.Axis()
		u, v := d.PlaneAxes()
		var origin [3]int
		if d.IsPositive() {
			origin[axis] = world.ChunkSize[axis] - 1
		}
		if err := emit.InsertFace(buf, d, origin, world.ChunkSize[u], world.ChunkSize[v], id); err != nil {
			return err
		}
	}
	return nil
}
