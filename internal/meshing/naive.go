package meshing

import (
	"voxmesh/internal/world"
)

// NaiveMesher emits one unit quad per visible voxel face. It does no merging
// and serves as the reference output for the greedy mesher.
type NaiveMesher struct {
	opts Options
}

// NewNaiveMesher creates a naive mesher.
func NewNaiveMesher(opts Options) *NaiveMesher {
	return &NaiveMesher{opts: opts}
}

// Name implements Mesher.
func (m *NaiveMesher) Name() string { return StrategyNaive }

// GenerateMesh implements Mesher.
func (m *NaiveMesher) GenerateMesh(c *world.Chunk, src world.NeighborSource) (*Mesh, error) {
	return generate(c, src, m.opts, m.build)
}

func (m *NaiveMesher) build(vol *volume, buf *MeshBuffer) error {
	emit := m.opts.emitter()
	for z := 0; z < world.ChunkSizeZ; z++ {
		for y := 0; y < world.ChunkSizeY; y++ {
			for x := 0; x < world.ChunkSizeX; x++ {
				pos := [3]int{x, y, z}
				for _, d := range world.Directions {
					id, ok := vol.faceAt(pos, d)
					if !ok {
						continue
					}
					if err := emit.InsertFace(buf, d, pos, 1, 1, id); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
