package gen

import (
	"math"

	"voxelgrid.ai/internal/sim/world/block"
)

const (
	WorldHeight = 256

	// Above this height every solid block is earth, so peaks come out bare.
	bareRockHeight = 100
	// Depth of the subsurface layer below the surface block.
	subsurfaceDepth = 3
)

// Config is the immutable noise setup of a world. It is built once from a
// seed and a biome catalog and shared read-only by every generator call.
type Config struct {
	Seed int64

	Continentalness HybridMulti
	Peaks           Fbm
	Arcanity        HybridMulti
	Humidity        Fbm
	Temperature     Fbm

	Detail Octaves
	Cave   Octaves

	ContinentalnessSpline Spline
	PeaksSpline           Spline
	WormSpline            Spline

	Biomes []Biome
}

func NewConfig(seed int64, biomes []Biome) *Config {
	if len(biomes) == 0 {
		biomes = DefaultBiomes()
	}
	return &Config{
		Seed:            seed,
		Temperature:     NewFbm(seed, 6, 0.5, 0.00074, 2.42),
		Continentalness: NewHybridMulti(seed+101, 6, 0.25, 0.00081, 2.12),
		Peaks:           NewFbm(seed+211, 6, 0.35, 0.00097, 2.0),
		Arcanity:        NewHybridMulti(seed+307, 6, 0.42, 0.00022, 2.15),
		Humidity:        NewFbm(seed+401, 6, 0.2, 0.00061, 2.24),
		Detail: Octaves{
			Count: 6, Amplitude: 1.1, Frequency: 1.3,
			AmpPersistence: 0.2, FreqPersistence: 2.0, Zoom: 75,
			noise: NewSimplex(seed + 503),
		},
		Cave: Octaves{
			Count: 1, Amplitude: 1.3, Frequency: 1.4,
			AmpPersistence: 0.5, FreqPersistence: 0.5, Zoom: 35,
			noise: NewSimplex(seed + 601),
		},
		ContinentalnessSpline: NewSpline(continentalnessKeys...),
		PeaksSpline:           NewSpline(peaksKeys...),
		WormSpline:            NewSpline(wormKeys...),
		Biomes:                append([]Biome(nil), biomes...),
	}
}

// Modifiers are the per-column climate values, each in [0, 1].
type Modifiers struct {
	Continentalness float64
	Peaks           float64
	Humidity        float64
	Arcanity        float64
	Temperature     float64
}

func (m Modifiers) weights() Weights {
	return Weights{
		Continentalness: m.Continentalness,
		Humidity:        m.Humidity,
		Arcanity:        m.Arcanity,
		Temperature:     m.Temperature,
	}
}

// Column caches what BlockAt needs for every y of one (x, z) column.
type Column struct {
	X, Z   int
	Height int
	Biome  Biome
}

type Generator struct {
	cfg *Config
}

func New(cfg *Config) *Generator { return &Generator{cfg: cfg} }

func (g *Generator) Config() *Config { return g.cfg }

func (g *Generator) Modifiers(x, z int) Modifiers {
	fx, fz := float64(x), float64(z)
	return Modifiers{
		Continentalness: remap01(g.cfg.Continentalness.Sample(fx, fz)),
		Peaks:           remap01(g.cfg.Peaks.Sample(fx, fz)),
		Humidity:        remap01(g.cfg.Humidity.Sample(fx, fz)),
		Arcanity:        remap01(g.cfg.Arcanity.Sample(fx, fz)),
		Temperature:     remap01(g.cfg.Temperature.Sample(fx, fz)),
	}
}

func (g *Generator) heightFrom(x, z int, m Modifiers) int {
	base := g.cfg.ContinentalnessSpline.Sample(m.Continentalness)
	detail := g.cfg.Detail.Sample2D(float64(x), float64(z)) * 20 * g.cfg.PeaksSpline.Sample(m.Peaks)
	return int(math.Round(base + detail))
}

func (g *Generator) biomeFrom(m Modifiers) Biome {
	w := m.weights()
	best := 0
	bestD := math.Inf(1)
	for i, b := range g.cfg.Biomes {
		if d := w.dist2(b.Weights); d < bestD {
			best, bestD = i, d
		}
	}
	return g.cfg.Biomes[best]
}

func (g *Generator) SurfaceHeight(x, z int) int {
	return g.heightFrom(x, z, g.Modifiers(x, z))
}

func (g *Generator) Biome(x, z int) Biome {
	return g.biomeFrom(g.Modifiers(x, z))
}

func (g *Generator) Column(x, z int) Column {
	m := g.Modifiers(x, z)
	return Column{X: x, Z: z, Height: g.heightFrom(x, z, m), Biome: g.biomeFrom(m)}
}

func (g *Generator) IsCave(x, y, z int) bool {
	v := g.cfg.Cave.Sample3D(float64(x), float64(y), float64(z))
	return (1-math.Abs(v))*g.cfg.WormSpline.Sample(float64(y)) <= 0.5
}

func (g *Generator) BlockAt(x, y, z int) block.Block {
	return g.BlockInColumn(g.Column(x, z), y)
}

// BlockInColumn resolves height y inside a precomputed column.
func (g *Generator) BlockInColumn(col Column, y int) block.Block {
	if y < 0 || y >= WorldHeight {
		return block.New(block.Air)
	}
	h := col.Height
	if y > h {
		return block.New(block.Air)
	}
	if g.IsCave(col.X, y, col.Z) {
		return block.New(block.Air)
	}
	switch {
	case y == h && y < bareRockHeight:
		return col.Biome.Surface(col.X, y, col.Z)
	case y+subsurfaceDepth < h || y == h:
		return col.Biome.Earth(col.X, y, col.Z)
	case y >= bareRockHeight:
		return col.Biome.Earth(col.X, y, col.Z)
	default:
		return col.Biome.Subsurface(col.X, y, col.Z)
	}
}
