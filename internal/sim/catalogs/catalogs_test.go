package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
)

func TestDefaultMatchesGenerator(t *testing.T) {
	c := Default()
	want := gen.DefaultBiomes()
	if len(c.Biomes.Biomes) != len(want) {
		t.Fatalf("biome count %d want %d", len(c.Biomes.Biomes), len(want))
	}
	for i := range want {
		if c.Biomes.Biomes[i] != want[i] {
			t.Fatalf("biome %d: got %+v want %+v", i, c.Biomes.Biomes[i], want[i])
		}
	}
	if len(c.Blocks.Palette) != 6 || c.Blocks.Palette[block.Stone] != "STONE" {
		t.Fatalf("unexpected palette: %v", c.Blocks.Palette)
	}
	if c.Blocks.PaletteDigest == "" || c.Biomes.Digest == "" {
		t.Fatalf("missing digests")
	}
}

func TestLoadOverridesFromDir(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"id":"flat","weights":{"continentalness":0,"humidity":0,"arcanity":0,"temperature":0},
	  "surface":"sand","subsurface":"sand","earth":"stone"}]`
	if err := os.WriteFile(filepath.Join(dir, "biomes.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Biomes.Biomes) != 1 {
		t.Fatalf("biomes=%d", len(c.Biomes.Biomes))
	}
	b := c.Biomes.Biomes[0]
	if b.Name != "flat" || b.SurfaceKind != block.Sand || b.Weights.Humidity != 0.5 {
		t.Fatalf("unexpected biome: %+v", b)
	}
	if c.Biomes.Digest == Default().Biomes.Digest {
		t.Fatalf("digest should follow file contents")
	}
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"biomes.json": `[{"id":"x","weights":{"continentalness":3},"surface":"GRASS","subsurface":"DIRT","earth":"STONE"}]`,
		"blocks.json": `[{"id":"AIR","transparent":true}]`,
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("expected error for %s", name)
		}
	}
}
