package export

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxmesh/internal/meshing"
	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshOf(t *testing.T, coord world.ChunkCoord, set func(c *world.Chunk)) *meshing.Mesh {
	t.Helper()
	c := world.NewChunk(coord)
	set(c)
	m, err := meshing.NewGreedyMesher(meshing.Options{Materials: registry.Defaults()}).GenerateMesh(c, nil)
	require.NoError(t, err)
	return m
}

func countPrefix(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestWriteOBJ(t *testing.T) {
	a := meshOf(t, world.ChunkCoord{}, func(c *world.Chunk) { c.SetBlock(0, 0, 0, registry.Stone) })
	b := meshOf(t, world.ChunkCoord{X: 1}, func(c *world.Chunk) {
		c.SetBlock(0, 0, 0, registry.Grass)
		c.SetBlock(1, 0, 0, registry.Dirt)
	})
	empty := meshOf(t, world.ChunkCoord{Z: 1}, func(*world.Chunk) {})

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, registry.Defaults(), a, empty, b))
	out := buf.String()

	assert.Equal(t, 2, countPrefix(out, "o "))
	assert.Equal(t, a.VertexCount()+b.VertexCount(), countPrefix(out, "v "))
	assert.Equal(t, a.VertexCount()+b.VertexCount(), countPrefix(out, "vt "))
	assert.Equal(t, a.VertexCount()+b.VertexCount(), countPrefix(out, "vn "))
	assert.Equal(t, 2*(a.Quads+b.Quads), countPrefix(out, "f "))
	assert.Contains(t, out, "usemtl stone\n")
	assert.Contains(t, out, "usemtl grass\n")
	assert.Contains(t, out, "usemtl dirt\n")

	// The second object is offset into world space and indexes past the first.
	assert.Contains(t, out, "o chunk_1_0_0\nv 18 0 0\n")
	assert.Contains(t, out, "f 25/25/25 ")
	assert.NotContains(t, out, "chunk_0_0_1")
}

func TestWriteOBJUnnamedMaterial(t *testing.T) {
	m := meshOf(t, world.ChunkCoord{}, func(c *world.Chunk) { c.SetBlock(0, 0, 0, 42) })
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, nil, m))
	assert.Contains(t, buf.String(), "usemtl material_42\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteOBJPropagatesErrors(t *testing.T) {
	m := meshOf(t, world.ChunkCoord{}, func(c *world.Chunk) { c.Fill(registry.Stone) })
	// Small meshes stay in the bufio buffer until Flush.
	assert.Error(t, WriteOBJ(failingWriter{}, nil, m))
}

func TestCreateFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload := strings.Repeat("v 1 2 3\n", 1000)

	for _, name := range []string{"chunk.obj", "chunk.obj.zst"} {
		path := filepath.Join(dir, name)
		w, err := CreateFile(path)
		require.NoError(t, err)
		_, err = io.WriteString(w, payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := OpenFile(path)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, payload, string(got), name)
	}

	plain, err := os.Stat(filepath.Join(dir, "chunk.obj"))
	require.NoError(t, err)
	packed, err := os.Stat(filepath.Join(dir, "chunk.obj.zst"))
	require.NoError(t, err)
	assert.Less(t, packed.Size(), plain.Size())
	assert.True(t, Compressed("a.ZST"))
	assert.False(t, Compressed("a.obj"))
}

func TestRenderPreview(t *testing.T) {
	w := world.New(world.NewFlatGenerator(3, registry.Grass))
	w.GenerateArea(0, 0, 0, 0, 0)
	c := w.Store.Chunk(world.ChunkCoord{})
	c.SetBlock(0, 8, 0, registry.Dirt)
	m, err := meshing.NewGreedyMesher(meshing.Options{Materials: registry.Defaults()}).GenerateMesh(c, w.Store)
	require.NoError(t, err)

	img := RenderPreview([]*meshing.Mesh{m}, PreviewOptions{Size: 64})
	require.Equal(t, 64, img.Bounds().Dx())

	// The dirt block sits at the minimum corner; grass covers the rest.
	pillar := img.RGBAAt(1, 1)
	grass := img.RGBAAt(40, 40)
	assert.Greater(t, pillar.R, pillar.G)
	assert.Greater(t, grass.G, grass.R)
	assert.NotEqual(t, Background, grass)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderPreviewEmpty(t *testing.T) {
	img := RenderPreview(nil, PreviewOptions{})
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, Background, img.RGBAAt(10, 10))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, DefaultColors[registry.Grass], colorFor(registry.Grass, nil))
	red := color.RGBA{R: 255, A: 255}
	assert.Equal(t, red, colorFor(registry.Grass, map[world.MaterialID]color.RGBA{registry.Grass: red}))
	assert.Equal(t, colorFor(77, nil), colorFor(77, nil))
	assert.Equal(t, uint8(255), colorFor(77, nil).A)
}
