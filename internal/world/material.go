package world

// MaterialID is the small integer handle a block uses to reference its material.
type MaterialID uint16

// Material describes the rendering-relevant properties of a voxel substance.
// Materials are immutable once registered.
type Material struct {
	ID          MaterialID
	Name        string
	Transparent bool
	CustomModel bool

	// TextureScale multiplies tiled UV extents. Zero means 1.
	TextureScale float32
}

// AirID is reserved for "no voxel present".
const AirID MaterialID = 0

// Air is the well-known empty material.
var Air = Material{
	ID:          AirID,
	Name:        "air",
	Transparent: true,
}

// IsAir reports whether the material is the reserved empty material.
func (m Material) IsAir() bool {
	return m.ID == AirID
}

// Occludes reports whether a face next to this material is hidden.
// Air, transparent and custom-model materials never hide a neighbouring face.
func (m Material) Occludes() bool {
	return !m.IsAir() && !m.Transparent && !m.CustomModel
}

// UVScale returns TextureScale with the zero value mapped to 1.
func (m Material) UVScale() float32 {
	if m.TextureScale <= 0 {
		return 1
	}
	return m.TextureScale
}

// MaterialLookup resolves material ids to their flags.
type MaterialLookup interface {
	Material(id MaterialID) (Material, bool)
}

// OcclusionLookup is a MaterialLookup that decides occlusion itself. Meshers
// prefer it so a registry can report ids it does not know.
type OcclusionLookup interface {
	MaterialLookup
	Occludes(id MaterialID) bool
}
