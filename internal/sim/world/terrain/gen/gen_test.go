package gen

import (
	"testing"

	"voxelgrid.ai/internal/sim/world/block"
)

func TestSimplexDeterministicAndBounded(t *testing.T) {
	a := NewSimplex(42)
	b := NewSimplex(42)
	for i := 0; i < 500; i++ {
		x := float64(i)*0.37 - 50
		y := float64(i)*0.11 + 3
		z := float64(i)*0.53 - 7
		n2 := a.Noise2D(x, z)
		if n2 != b.Noise2D(x, z) {
			t.Fatalf("Noise2D not deterministic at (%v,%v)", x, z)
		}
		if n2 < -1 || n2 > 1 {
			t.Fatalf("Noise2D out of range: %v", n2)
		}
		n3 := a.Noise3D(x, y, z)
		if n3 != b.Noise3D(x, y, z) {
			t.Fatalf("Noise3D not deterministic at (%v,%v,%v)", x, y, z)
		}
		if n3 < -1 || n3 > 1 {
			t.Fatalf("Noise3D out of range: %v", n3)
		}
	}
}

func TestSimplexSeedsDiffer(t *testing.T) {
	a := NewSimplex(1)
	b := NewSimplex(2)
	same := 0
	for i := 0; i < 100; i++ {
		x := float64(i)*1.7 + 0.3
		if a.Noise2D(x, x*0.5) == b.Noise2D(x, x*0.5) {
			same++
		}
	}
	if same > 10 {
		t.Fatalf("different seeds agree on %d/100 samples", same)
	}
}

func TestSplineSample(t *testing.T) {
	s := NewSpline(Key{1, 10}, Key{0, 0}, Key{2, 30})
	cases := []struct{ x, want float64 }{
		{-5, 0}, {0, 0}, {0.5, 5}, {1, 10}, {1.5, 20}, {2, 30}, {9, 30},
	}
	for _, c := range cases {
		if got := s.Sample(c.x); got != c.want {
			t.Fatalf("Sample(%v)=%v want %v", c.x, got, c.want)
		}
	}
}

func TestWormSplineBlocksCavesAtBedrock(t *testing.T) {
	g := New(NewConfig(7, nil))
	for x := -20; x < 20; x++ {
		for z := -20; z < 20; z++ {
			if g.IsCave(x, 0, z) {
				t.Fatalf("cave at y=0 (%d,%d)", x, z)
			}
		}
	}
}

func TestFractalsBounded(t *testing.T) {
	cfg := NewConfig(99, nil)
	for i := -300; i < 300; i += 7 {
		x, z := float64(i*131), float64(i*-57)
		for _, v := range []float64{
			cfg.Continentalness.Sample(x, z),
			cfg.Peaks.Sample(x, z),
			cfg.Arcanity.Sample(x, z),
			cfg.Humidity.Sample(x, z),
			cfg.Temperature.Sample(x, z),
			cfg.Detail.Sample2D(x, z),
		} {
			if v < -1 || v > 1 {
				t.Fatalf("sample out of range at %v,%v: %v", x, z, v)
			}
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := New(NewConfig(1234, nil))
	b := New(NewConfig(1234, nil))
	for x := -40; x < 40; x += 3 {
		for z := -40; z < 40; z += 5 {
			if a.SurfaceHeight(x, z) != b.SurfaceHeight(x, z) {
				t.Fatalf("height differs at %d,%d", x, z)
			}
			for y := 0; y < WorldHeight; y += 9 {
				if a.BlockAt(x, y, z) != b.BlockAt(x, y, z) {
					t.Fatalf("block differs at %d,%d,%d", x, y, z)
				}
			}
		}
	}
}

func TestBiomeTieGoesToFirst(t *testing.T) {
	w := Weights{0.5, 0.5, 0.5, 0.5}
	cfg := NewConfig(1, []Biome{
		{Name: "first", Weights: w, SurfaceKind: block.Grass},
		{Name: "second", Weights: w, SurfaceKind: block.Sand},
	})
	g := New(cfg)
	for x := 0; x < 50; x += 10 {
		if got := g.Biome(x, -x).Name; got != "first" {
			t.Fatalf("tie resolved to %q", got)
		}
	}
}

func TestBlockInColumnLayering(t *testing.T) {
	cfg := NewConfig(5, []Biome{{
		Name:           "only",
		SurfaceKind:    block.Grass,
		SubsurfaceKind: block.Dirt,
		EarthKind:      block.Stone,
	}})
	// Disable caves so the layering is visible in isolation.
	cfg.WormSpline = NewSpline(Key{0, 100}, Key{256, 100})
	g := New(cfg)

	col := Column{X: 3, Z: 4, Height: 70, Biome: cfg.Biomes[0]}
	want := map[int]block.Kind{
		71: block.Air, 70: block.Grass, 69: block.Dirt, 67: block.Dirt,
		66: block.Stone, 0: block.Stone, -1: block.Air, 300: block.Air,
	}
	for y, k := range want {
		if got := g.BlockInColumn(col, y).Kind; got != k {
			t.Fatalf("y=%d: got %v want %v", y, got, k)
		}
	}

	high := Column{X: 3, Z: 4, Height: 120, Biome: cfg.Biomes[0]}
	for _, y := range []int{120, 119, 117} {
		if got := g.BlockInColumn(high, y).Kind; got != block.Stone {
			t.Fatalf("high column y=%d: got %v want STONE", y, got)
		}
	}
}

func TestSurfaceHeightPlausible(t *testing.T) {
	g := New(NewConfig(2024, nil))
	for x := -500; x <= 500; x += 50 {
		for z := -500; z <= 500; z += 50 {
			h := g.SurfaceHeight(x, z)
			if h < 0 || h >= WorldHeight {
				t.Fatalf("height out of world at %d,%d: %d", x, z, h)
			}
		}
	}
}
