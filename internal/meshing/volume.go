package meshing

import (
	"voxmesh/internal/world"
)

type matInfo struct {
	occludes bool
	custom   bool
}

// volume is the read-only input of one mesh generation: a snapshot of the
// chunk plus copies of the neighbour layers touching each face. A missing
// plane means no neighbour is loaded there, which reads as air.
type volume struct {
	snap    *world.Snapshot
	borders [world.NumDirections]*world.Plane

	materials world.MaterialLookup
	info      map[world.MaterialID]matInfo
}

func newVolume(c *world.Chunk, src world.NeighborSource, materials world.MaterialLookup) *volume {
	vol := &volume{
		snap:      c.Snapshot(),
		materials: materials,
		info:      make(map[world.MaterialID]matInfo, 8),
	}
	if src == nil {
		return vol
	}
	for _, d := range world.Directions {
		coord, ok := c.Neighbor(d)
		if !ok {
			continue
		}
		nb := src.Chunk(coord)
		if nb == nil {
			// Stale link: the neighbour was unloaded.
			continue
		}
		p := nb.BorderPlane(d.Opposite())
		vol.borders[d] = &p
	}
	return vol
}

func (vol *volume) material(id world.MaterialID) matInfo {
	if id == world.AirID {
		return matInfo{}
	}
	if mi, ok := vol.info[id]; ok {
		return mi
	}
	mi := matInfo{occludes: true}
	if vol.materials != nil {
		m, known := vol.materials.Material(id)
		switch occ, ok := vol.materials.(world.OcclusionLookup); {
		case ok:
			mi = matInfo{occludes: occ.Occludes(id), custom: known && m.CustomModel}
		case known:
			mi = matInfo{occludes: m.Occludes(), custom: m.CustomModel}
		default:
			mi = matInfo{}
		}
	}
	vol.info[id] = mi
	return mi
}

// isolated reports whether no neighbour layer is present.
func (vol *volume) isolated() bool {
	for _, b := range vol.borders {
		if b != nil {
			return false
		}
	}
	return true
}

// adjacent returns the material next to pos in direction d, reading the
// neighbour layer when pos sits on the chunk border.
func (vol *volume) adjacent(pos [3]int, d world.Direction) world.MaterialID {
	axis := d.Axis()
	n := pos
	n[axis] += d.Sign()
	if n[axis] >= 0 && n[axis] < world.ChunkSize[axis] {
		return vol.snap.At(n[0], n[1], n[2])
	}
	plane := vol.borders[d]
	if plane == nil {
		return world.AirID
	}
	u, v := d.PlaneAxes()
	return plane.At(pos[u], pos[v])
}

// faceAt returns the material of the face of pos pointing in d and whether
// that face is visible: the voxel is a solid cube and its neighbour does not
// hide it.
func (vol *volume) faceAt(pos [3]int, d world.Direction) (world.MaterialID, bool) {
	id := vol.snap.At(pos[0], pos[1], pos[2])
	if id == world.AirID || vol.material(id).custom {
		return world.AirID, false
	}
	if vol.material(vol.adjacent(pos, d)).occludes {
		return world.AirID, false
	}
	return id, true
}

// collectCustom appends every custom-model voxel in z, y, x order.
func (vol *volume) collectCustom(buf *MeshBuffer) {
	for z := 0; z < world.ChunkSizeZ; z++ {
		for y := 0; y < world.ChunkSizeY; y++ {
			for x := 0; x < world.ChunkSizeX; x++ {
				id := vol.snap.At(x, y, z)
				if id != world.AirID && vol.material(id).custom {
					buf.CustomModels = append(buf.CustomModels, Voxel{X: x, Y: y, Z: z, Material: id})
				}
			}
		}
	}
}
