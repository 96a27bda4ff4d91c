package meshing

import (
	"errors"
	"fmt"
	"strings"

	"voxmesh/internal/world"
)

// Strategy names accepted by NewMesher.
const (
	StrategyNaive  = "naive"
	StrategyGreedy = "greedy"
)

// ErrUnknownStrategy is returned by NewMesher for unrecognised names.
var ErrUnknownStrategy = errors.New("unknown meshing strategy")

// Mesher turns a chunk into renderable geometry. Implementations read the
// chunk and the border layers of its linked neighbours and never mutate them.
type Mesher interface {
	Name() string
	GenerateMesh(c *world.Chunk, src world.NeighborSource) (*Mesh, error)
}

// Options configures both strategies.
type Options struct {
	// Materials resolves transparency and custom-model flags. When nil every
	// non-air material is an opaque cube.
	Materials world.MaterialLookup
	UV        UVMode
	// MaxVertices caps the vertex count per chunk mesh, see FaceEmitter.
	MaxVertices int
}

func (o Options) emitter() FaceEmitter {
	return FaceEmitter{UV: o.UV, Materials: o.Materials, MaxVertices: o.MaxVertices}
}

// NewMesher selects a strategy by name.
func NewMesher(name string, opts Options) (Mesher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyNaive:
		return NewNaiveMesher(opts), nil
	case "", StrategyGreedy:
		return NewGreedyMesher(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// recoverOutOfRange turns an out-of-range panic raised while meshing into an
// error so one bad chunk cannot take the caller down.
func recoverOutOfRange(coord world.ChunkCoord, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, world.ErrOutOfRange) {
		*err = fmt.Errorf("mesh chunk %v: %w", coord, e)
		return
	}
	panic(r)
}

type buildFunc func(vol *volume, buf *MeshBuffer) error

func generate(c *world.Chunk, src world.NeighborSource, opts Options, build buildFunc) (mesh *Mesh, err error) {
	defer recoverOutOfRange(c.Coord, &err)

	vol := newVolume(c, src, opts.Materials)
	buf := NewMeshBuffer(256)
	if err := build(vol, buf); err != nil {
		return nil, fmt.Errorf("mesh chunk %v: %w", c.Coord, err)
	}
	vol.collectCustom(buf)
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("mesh chunk %v: %w", c.Coord, err)
	}
	return buf.Build(c.Coord), nil
}
