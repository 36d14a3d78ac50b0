package gen

import "sort"

type Key struct {
	X, Y float64
}

// Spline is a piecewise-linear curve through keys sorted by X. Inputs outside
// the key range clamp to the end values.
type Spline struct {
	keys []Key
}

func NewSpline(keys ...Key) Spline {
	ks := append([]Key(nil), keys...)
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].X < ks[j].X })
	return Spline{keys: ks}
}

func (s Spline) Sample(x float64) float64 {
	n := len(s.keys)
	if n == 0 {
		return 0
	}
	if x <= s.keys[0].X {
		return s.keys[0].Y
	}
	if x >= s.keys[n-1].X {
		return s.keys[n-1].Y
	}
	i := sort.Search(n, func(i int) bool { return s.keys[i].X > x })
	a, b := s.keys[i-1], s.keys[i]
	t := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*t
}

var (
	continentalnessKeys = []Key{{0, 43}, {0.3, 61}, {0.4, 62}, {0.5, 64}, {0.6, 110}, {0.7, 120}, {1.0, 170}}
	peaksKeys           = []Key{{0, 0}, {0.3, 0}, {0.6, 1.5}, {0.7, 2}, {0.85, 6}, {1, 7}}
	wormKeys            = []Key{{0, 100}, {6, 0.7}, {15, 0.7}, {50, 0.8}, {60, 10.9}, {64, 2.0}, {80, 2.1}, {150, 2.3}, {256, 100}}
)
