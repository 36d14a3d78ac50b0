package gen

import "voxelgrid.ai/internal/sim/world/block"

// Weights places a biome in modifier space. Catalog values are authored in
// [-1, 1] and remapped to [0, 1] on load, like the sampled modifiers.
type Weights struct {
	Continentalness float64 `json:"continentalness"`
	Humidity        float64 `json:"humidity"`
	Arcanity        float64 `json:"arcanity"`
	Temperature     float64 `json:"temperature"`
}

func (w Weights) Remap() Weights {
	return Weights{
		Continentalness: remap01(w.Continentalness),
		Humidity:        remap01(w.Humidity),
		Arcanity:        remap01(w.Arcanity),
		Temperature:     remap01(w.Temperature),
	}
}

func (w Weights) dist2(o Weights) float64 {
	dc := w.Continentalness - o.Continentalness
	dh := w.Humidity - o.Humidity
	da := w.Arcanity - o.Arcanity
	dt := w.Temperature - o.Temperature
	return dc*dc + dh*dh + da*da + dt*dt
}

type Biome struct {
	Name    string
	Weights Weights // remapped to [0, 1]

	SurfaceKind    block.Kind
	SubsurfaceKind block.Kind
	EarthKind      block.Kind
}

func (b Biome) Surface(x, y, z int) block.Block    { return block.New(b.SurfaceKind) }
func (b Biome) Subsurface(x, y, z int) block.Block { return block.New(b.SubsurfaceKind) }
func (b Biome) Earth(x, y, z int) block.Block      { return block.New(b.EarthKind) }

// DefaultBiomes is the built-in catalog used when no biomes.json is supplied.
// Order matters: ties in nearest-neighbour selection go to the earlier entry.
func DefaultBiomes() []Biome {
	raw := []struct {
		name string
		w    Weights
		s    block.Kind
		ss   block.Kind
		e    block.Kind
	}{
		{"plains", Weights{0.1, 0.0, -0.2, 0.1}, block.Grass, block.Dirt, block.Stone},
		{"mountains", Weights{0.6, -0.1, 0.1, -0.3}, block.Stone, block.Stone, block.Stone},
		{"desert", Weights{0.2, -0.7, 0.0, 0.7}, block.Sand, block.Dirt, block.Stone},
		{"woodlands", Weights{0.15, 0.5, 0.0, 0.2}, block.Grass, block.Dirt, block.Stone},
		{"snowy_plains", Weights{0.1, 0.1, -0.1, -0.7}, block.Sand, block.Dirt, block.Stone},
		{"haunted_woodlands", Weights{0.1, 0.4, 0.7, -0.1}, block.Grass, block.Dirt, block.Stone},
		{"lake", Weights{-0.5, 0.3, 0.0, 0.1}, block.Sand, block.Dirt, block.Stone},
	}
	out := make([]Biome, 0, len(raw))
	for _, r := range raw {
		out = append(out, Biome{
			Name:           r.name,
			Weights:        r.w.Remap(),
			SurfaceKind:    r.s,
			SubsurfaceKind: r.ss,
			EarthKind:      r.e,
		})
	}
	return out
}

func remap01(v float64) float64 { return v*0.5 + 0.5 }
