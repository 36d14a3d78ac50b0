package gen

import "math"

// Fractal holds the shared parameters of a multi-octave sampler. Every octave
// draws from its own Simplex table seeded seed+i.
type Fractal struct {
	Octaves     int
	Persistence float64
	Frequency   float64
	Lacunarity  float64

	sources []*Simplex
	scale   float64
}

func newFractal(seed int64, octaves int, persistence, frequency, lacunarity float64) Fractal {
	if octaves < 1 {
		octaves = 1
	}
	f := Fractal{
		Octaves:     octaves,
		Persistence: persistence,
		Frequency:   frequency,
		Lacunarity:  lacunarity,
		sources:     make([]*Simplex, octaves),
	}
	var ampSum float64
	amp := 1.0
	for i := 0; i < octaves; i++ {
		f.sources[i] = NewSimplex(seed + int64(i))
		ampSum += amp
		amp *= persistence
	}
	f.scale = 1 / ampSum
	return f
}

// Fbm is fractional Brownian motion: the amplitude-weighted sum of octaves.
type Fbm struct{ Fractal }

func NewFbm(seed int64, octaves int, persistence, frequency, lacunarity float64) Fbm {
	return Fbm{newFractal(seed, octaves, persistence, frequency, lacunarity)}
}

func (f Fbm) Sample(x, z float64) float64 {
	x *= f.Frequency
	z *= f.Frequency
	var sum float64
	amp := 1.0
	for _, src := range f.sources {
		sum += src.Noise2D(x, z) * amp
		amp *= f.Persistence
		x *= f.Lacunarity
		z *= f.Lacunarity
	}
	return clamp1(sum * f.scale)
}

// HybridMulti weights each octave by the running product of earlier octaves,
// which smooths valleys and keeps ridges rough.
type HybridMulti struct{ Fractal }

func NewHybridMulti(seed int64, octaves int, persistence, frequency, lacunarity float64) HybridMulti {
	return HybridMulti{newFractal(seed, octaves, persistence, frequency, lacunarity)}
}

func (h HybridMulti) Sample(x, z float64) float64 {
	x *= h.Frequency
	z *= h.Frequency
	result := h.sources[0].Noise2D(x, z)
	weight := result
	for i := 1; i < len(h.sources); i++ {
		weight = math.Min(weight, 1)
		x *= h.Lacunarity
		z *= h.Lacunarity
		signal := h.sources[i].Noise2D(x, z) * math.Pow(h.Persistence, float64(i))
		result += weight * signal
		weight *= signal
	}
	return clamp1(result * h.scale)
}

// Octaves is the plain octave sum used for surface detail and caves: the
// coordinate is divided by Zoom, then each octave multiplies amplitude and
// frequency by their own persistence factors. The result is normalised by the
// total amplitude.
type Octaves struct {
	Count           int
	Amplitude       float64
	Frequency       float64
	AmpPersistence  float64
	FreqPersistence float64
	Zoom            float64
	noise           *Simplex
}

func (o Octaves) Sample2D(x, z float64) float64 {
	var total, ampSum float64
	amp, freq := o.Amplitude, o.Frequency
	for i := 0; i < o.Count; i++ {
		total += clamp1(o.noise.Noise2D(x/o.Zoom*freq, z/o.Zoom*freq)) * amp
		ampSum += amp
		amp *= o.AmpPersistence
		freq *= o.FreqPersistence
	}
	if ampSum == 0 {
		return 0
	}
	return total / ampSum
}

func (o Octaves) Sample3D(x, y, z float64) float64 {
	var total, ampSum float64
	amp, freq := o.Amplitude, o.Frequency
	for i := 0; i < o.Count; i++ {
		total += clamp1(o.noise.Noise3D(x/o.Zoom*freq, y/o.Zoom*freq, z/o.Zoom*freq)) * amp
		ampSum += amp
		amp *= o.AmpPersistence
		freq *= o.FreqPersistence
	}
	if ampSum == 0 {
		return 0
	}
	return total / ampSum
}
