package world

import "testing"

const (
	testStone MaterialID = 1
	testDirt  MaterialID = 2
	testGrass MaterialID = 3
	testWater MaterialID = 4
)

var testPalette = Palette{Stone: testStone, Dirt: testDirt, Grass: testGrass, Water: testWater}

func TestFlatGeneratorImplementsInterface(t *testing.T) {
	var _ TerrainGenerator = NewFlatGenerator(10, testStone)
	var _ TerrainGenerator = NewGenerator(123, testPalette)
	var _ TerrainGenerator = NewPerlinGenerator(123, testPalette)
}

func TestPerlinGeneratorDeterministicAndBounded(t *testing.T) {
	a := NewPerlinGenerator(555, testPalette)
	b := NewPerlinGenerator(555, testPalette)
	varied := false
	first := a.HeightAt(0, 0)
	for x := -64; x < 64; x += 7 {
		for z := -64; z < 64; z += 5 {
			h := a.HeightAt(x, z)
			if h != b.HeightAt(x, z) {
				t.Fatalf("height at %d,%d differs between generators with the same seed", x, z)
			}
			// base 12 +- amplitude 20, floored at 0
			if h < 0 || h > 32 {
				t.Fatalf("height %d at %d,%d out of range", h, x, z)
			}
			if h != first {
				varied = true
			}
		}
	}
	if !varied {
		t.Fatal("perlin terrain is flat")
	}
}

func TestFlatGeneratorPopulate(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	NewFlatGenerator(5, testStone).PopulateChunk(c)

	for y := 0; y <= 5; y++ {
		if b := c.BlockAt(3, y, 7); b.Material != testStone {
			t.Errorf("Expected stone at 3,%d,7, got %v", y, b.Material)
		}
	}
	if b := c.BlockAt(3, 6, 7); !b.IsAir() {
		t.Errorf("Expected air at 3,6,7, got %v", b.Material)
	}
	if !c.HasChanged() {
		t.Error("populated chunk should be dirty")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	a := NewChunk(ChunkCoord{X: 3, Z: -2})
	b := NewChunk(ChunkCoord{X: 3, Z: -2})
	NewGenerator(98765, testPalette).PopulateChunk(a)
	NewGenerator(98765, testPalette).PopulateChunk(b)

	if a.Snapshot().Blocks != b.Snapshot().Blocks {
		t.Fatal("same seed produced different chunks")
	}
}

func TestGeneratorColumnsFollowHeight(t *testing.T) {
	g := NewGenerator(42, testPalette)
	g.SetSeaLevel(-1)
	c := NewChunk(ChunkCoord{})
	g.PopulateChunk(c)

	for lx := 0; lx < ChunkSizeX; lx++ {
		for lz := 0; lz < ChunkSizeZ; lz++ {
			h := g.HeightAt(lx, lz)
			if h >= ChunkSizeY {
				continue
			}
			if got := c.BlockAt(lx, h, lz).Material; got != testGrass {
				t.Fatalf("column %d,%d: surface at %d is %d, want grass", lx, lz, h, got)
			}
			if h+1 < ChunkSizeY && !c.BlockAt(lx, h+1, lz).IsAir() {
				t.Fatalf("column %d,%d: block above surface is not air", lx, lz)
			}
		}
	}
}

func TestWorldGenerateLinksNeighbours(t *testing.T) {
	w := New(NewFlatGenerator(3, testStone))
	a := w.Generate(ChunkCoord{})
	b := w.Generate(ChunkCoord{X: 1})

	if nc, ok := a.Neighbor(XPositive); !ok || nc != b.Coord {
		t.Fatalf("a +x neighbour = %v %v, want %v", nc, ok, b.Coord)
	}
	if nc, ok := b.Neighbor(XNegative); !ok || nc != a.Coord {
		t.Fatalf("b -x neighbour = %v %v, want %v", nc, ok, a.Coord)
	}
	if _, ok := a.Neighbor(ZPositive); ok {
		t.Fatal("a should have no +z neighbour")
	}
	if w.Generate(ChunkCoord{}) != a {
		t.Fatal("Generate should return the loaded chunk")
	}
}

func TestWorldGenerateArea(t *testing.T) {
	w := New(NewFlatGenerator(3, testStone))
	created := w.GenerateArea(0, 0, 1, 0, 1)
	// radius 1 disc: centre + 4 edge neighbours, two Y levels
	if created != 10 {
		t.Fatalf("created %d chunks, want 10", created)
	}
	if again := w.GenerateArea(0, 0, 1, 0, 1); again != 0 {
		t.Fatalf("second pass created %d chunks, want 0", again)
	}
}

func BenchmarkPopulateChunk(b *testing.B) {
	g := NewGenerator(1, testPalette)
	ch := NewChunk(ChunkCoord{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.PopulateChunk(ch)
	}
}

func BenchmarkHeightAt(b *testing.B) {
	w := New(NewGenerator(1, testPalette))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.SurfaceHeightAt(i%1024, (i*31)%1024)
	}
}
