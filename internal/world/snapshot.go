package world

// Snapshot is an immutable copy of a chunk's blocks taken at one instant.
type Snapshot struct {
	Coord  ChunkCoord
	Blocks [ChunkVolume]Block
}

// At returns the material at local coordinates. It panics with
// *OutOfRangeError outside the chunk.
func (s *Snapshot) At(x, y, z int) MaterialID {
	return s.Blocks[mustIndex(x, y, z)].Material
}

// Uniform reports whether the snapshot holds a single material.
func (s *Snapshot) Uniform() (MaterialID, bool) {
	return uniform(&s.Blocks)
}

// Plane is a copied layer of one chunk face, addressed by the face's plane axes.
type Plane struct {
	Dir           Direction
	Width, Height int
	Cells         []MaterialID
}

func newPlane(d Direction) Plane {
	u, v := d.PlaneAxes()
	w, h := ChunkSize[u], ChunkSize[v]
	return Plane{Dir: d, Width: w, Height: h, Cells: make([]MaterialID, w*h)}
}

// At returns the material at plane coordinates (i along u, j along v).
func (p Plane) At(i, j int) MaterialID {
	return p.Cells[j*p.Width+i]
}
