package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
)

//go:embed defaults/*.json
var defaults embed.FS

type Catalogs struct {
	Blocks BlockCatalog
	Biomes BiomeCatalog
}

type BlockCatalog struct {
	Palette       []string // indexed by block.Kind
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID          string `json:"id"`
	Solid       bool   `json:"solid"`
	Breakable   bool   `json:"breakable"`
	Transparent bool   `json:"transparent"`
}

type BiomeCatalog struct {
	Biomes []gen.Biome
	Digest string
}

type BiomeDef struct {
	ID         string      `json:"id"`
	Weights    gen.Weights `json:"weights"`
	Surface    string      `json:"surface"`
	Subsurface string      `json:"subsurface"`
	Earth      string      `json:"earth"`
}

// Load reads blocks.json and biomes.json from configDir. A file that does
// not exist falls back to the built-in copy.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	raw, err := readOrDefault(configDir, "blocks.json")
	if err != nil {
		return nil, err
	}
	if err := loadBlocks(raw, &c.Blocks); err != nil {
		return nil, err
	}
	raw, err = readOrDefault(configDir, "biomes.json")
	if err != nil {
		return nil, err
	}
	if err := loadBiomes(raw, &c.Biomes); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in catalogs.
func Default() *Catalogs {
	c, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("built-in catalogs: %v", err))
	}
	return c
}

func readOrDefault(dir, name string) ([]byte, error) {
	if dir != "" {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return defaults.ReadFile("defaults/" + name)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(raw []byte, out *BlockCatalog) error {
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		k, ok := block.ParseKind(d.ID)
		if !ok {
			return fmt.Errorf("blocks.json: unknown block %q", d.ID)
		}
		b := block.New(k)
		if d.Transparent != b.IsTransparent() || d.Breakable == b.IsUnbreakable() {
			return fmt.Errorf("blocks.json: %s flags disagree with the engine", d.ID)
		}
		out.Defs[d.ID] = d
	}

	// The palette is fixed by block.Kind order, not by file order.
	out.Palette = nil
	for k := block.Air; k.Valid(); k++ {
		if _, ok := out.Defs[k.String()]; !ok {
			return fmt.Errorf("blocks.json: missing %s", k)
		}
		out.Palette = append(out.Palette, k.String())
	}
	palJSON, _ := json.Marshal(out.Palette)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadBiomes(raw []byte, out *BiomeCatalog) error {
	out.Digest = sha256Hex(raw)

	var defs []BiomeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("biomes.json: %w", err)
	}
	if len(defs) == 0 {
		return fmt.Errorf("biomes.json: no biomes")
	}
	seen := map[string]bool{}
	out.Biomes = out.Biomes[:0]
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("biomes.json: empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("biomes.json: duplicate id %q", d.ID)
		}
		seen[d.ID] = true
		for _, w := range []float64{d.Weights.Continentalness, d.Weights.Humidity, d.Weights.Arcanity, d.Weights.Temperature} {
			if w < -1 || w > 1 {
				return fmt.Errorf("biomes.json: %s weight %v outside [-1, 1]", d.ID, w)
			}
		}
		kinds := make([]block.Kind, 3)
		for i, name := range []string{d.Surface, d.Subsurface, d.Earth} {
			k, ok := block.ParseKind(name)
			if !ok {
				return fmt.Errorf("biomes.json: %s uses unknown block %q", d.ID, name)
			}
			kinds[i] = k
		}
		// Catalog order is kept: ties in biome selection go to the earlier entry.
		out.Biomes = append(out.Biomes, gen.Biome{
			Name:           d.ID,
			Weights:        d.Weights.Remap(),
			SurfaceKind:    kinds[0],
			SubsurfaceKind: kinds[1],
			EarthKind:      kinds[2],
		})
	}
	return nil
}
