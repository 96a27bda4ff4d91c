package export

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"slices"

	"voxmesh/internal/meshing"
	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/vector"
)

// DefaultColors tints the built-in materials.
var DefaultColors = map[world.MaterialID]color.RGBA{
	registry.Stone: {R: 125, G: 125, B: 125, A: 255},
	registry.Dirt:  {R: 134, G: 96, B: 67, A: 255},
	registry.Grass: {R: 95, G: 159, B: 53, A: 255},
	registry.Glass: {R: 200, G: 230, B: 240, A: 255},
	registry.Water: {R: 47, G: 94, B: 201, A: 255},
}

// Background fills pixels no top face covers.
var Background = color.RGBA{R: 20, G: 24, B: 32, A: 255}

// PreviewOptions configures RenderPreview.
type PreviewOptions struct {
	// Size is the width and height of the image in pixels.
	Size int
	// Colors overrides DefaultColors. Unlisted materials get a stable hashed colour.
	Colors map[world.MaterialID]color.RGBA
}

type topFace struct {
	minX, minZ, maxX, maxZ float32
	y                      float32
	mat                    world.MaterialID
}

// RenderPreview rasterises the upward facing quads of meshes as seen from
// above. Higher faces are drawn over lower ones and shaded brighter.
func RenderPreview(meshes []*meshing.Mesh, opts PreviewOptions) *image.RGBA {
	size := opts.Size
	if size <= 0 {
		size = 512
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	faces := collectTopFaces(meshes)
	if len(faces) == 0 {
		return img
	}

	minX, minZ := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxZ := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	minY, maxY := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, f := range faces {
		minX, minZ = min(minX, f.minX), min(minZ, f.minZ)
		maxX, maxZ = max(maxX, f.maxX), max(maxZ, f.maxZ)
		minY, maxY = min(minY, f.y), max(maxY, f.y)
	}
	scale := float32(size) / max(maxX-minX, maxZ-minZ)

	slices.SortStableFunc(faces, func(a, b topFace) int {
		switch {
		case a.y < b.y:
			return -1
		case a.y > b.y:
			return 1
		}
		return 0
	})

	r := vector.NewRasterizer(size, size)
	for _, f := range faces {
		shade := float32(1)
		if maxY > minY {
			shade = 0.55 + 0.45*(f.y-minY)/(maxY-minY)
		}
		c := shaded(colorFor(f.mat, opts.Colors), shade)

		x0, z0 := (f.minX-minX)*scale, (f.minZ-minZ)*scale
		x1, z1 := (f.maxX-minX)*scale, (f.maxZ-minZ)*scale
		r.Reset(size, size)
		r.MoveTo(x0, z0)
		r.LineTo(x1, z0)
		r.LineTo(x1, z1)
		r.LineTo(x0, z1)
		r.ClosePath()
		r.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
	}
	return img
}

func collectTopFaces(meshes []*meshing.Mesh) []topFace {
	var faces []topFace
	for _, m := range meshes {
		if m.Empty() {
			continue
		}
		offX := float32(m.Coord.X * world.ChunkSizeX)
		offY := float32(m.Coord.Y * world.ChunkSizeY)
		offZ := float32(m.Coord.Z * world.ChunkSizeZ)
		for q := 0; q < m.Quads; q++ {
			base := int(m.Indices[q*6])
			if m.Normals[base][1] < 0.5 {
				continue
			}
			f := topFace{
				minX: float32(math.MaxFloat32), minZ: float32(math.MaxFloat32),
				maxX: -float32(math.MaxFloat32), maxZ: -float32(math.MaxFloat32),
				y:   m.Positions[base][1] + offY,
				mat: m.Materials[q],
			}
			for k := 0; k < 4; k++ {
				p := m.Positions[base+k]
				f.minX, f.maxX = min(f.minX, p[0]+offX), max(f.maxX, p[0]+offX)
				f.minZ, f.maxZ = min(f.minZ, p[2]+offZ), max(f.maxZ, p[2]+offZ)
			}
			faces = append(faces, f)
		}
	}
	return faces
}

func colorFor(id world.MaterialID, overrides map[world.MaterialID]color.RGBA) color.RGBA {
	if c, ok := overrides[id]; ok {
		return c
	}
	if c, ok := DefaultColors[id]; ok {
		return c
	}
	h := xxhash.Sum64(binary.LittleEndian.AppendUint16(nil, uint16(id)))
	return color.RGBA{R: uint8(h), G: uint8(h >> 8), B: uint8(h >> 16), A: 255}
}

func shaded(c color.RGBA, f float32) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R) * f),
		G: uint8(float32(c.G) * f),
		B: uint8(float32(c.B) * f),
		A: c.A,
	}
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
