package gen

import "voxelgrid.ai/internal/sim/world/logic/mathx"

// Simplex is seeded 2D/3D simplex noise with output in [-1, 1].
type Simplex struct {
	perm [512]uint8
}

var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

func NewSimplex(seed int64) *Simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	// Fisher-Yates driven by splitmix so nearby seeds give unrelated tables.
	state := uint64(seed)
	for i := 255; i > 0; i-- {
		state = mathx.Mix64(state)
		j := int(state % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}
	s := &Simplex{}
	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

func (s *Simplex) grad(i int) [3]float64 { return grad3[int(s.perm[i])%12] }

func (s *Simplex) Noise2D(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)
	sk := (x + y) * f2
	i := fastFloor(x + sk)
	j := fastFloor(y + sk)
	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}
	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii := i & 255
	jj := j & 255
	corner := func(g [3]float64, dx, dy float64) float64 {
		t := 0.5 - dx*dx - dy*dy
		if t < 0 {
			return 0
		}
		t *= t
		return t * t * (g[0]*dx + g[1]*dy)
	}
	n := corner(s.grad(ii+int(s.perm[jj])), x0, y0)
	n += corner(s.grad(ii+i1+int(s.perm[jj+j1])), x1, y1)
	n += corner(s.grad(ii+1+int(s.perm[jj+1])), x2, y2)
	return clamp1(70 * n)
}

func (s *Simplex) Noise3D(x, y, z float64) float64 {
	const (
		f3 = 1.0 / 3.0
		g3 = 1.0 / 6.0
	)
	sk := (x + y + z) * f3
	i := fastFloor(x + sk)
	j := fastFloor(y + sk)
	k := fastFloor(z + sk)
	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= y0 && x0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case y0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case x0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	ii := i & 255
	jj := j & 255
	kk := k & 255
	hash := func(di, dj, dk int) int {
		return ii + di + int(s.perm[jj+dj+int(s.perm[kk+dk])])
	}
	corner := func(h int, dx, dy, dz float64) float64 {
		t := 0.6 - dx*dx - dy*dy - dz*dz
		if t < 0 {
			return 0
		}
		t *= t
		g := s.grad(h)
		return t * t * (g[0]*dx + g[1]*dy + g[2]*dz)
	}
	n := corner(hash(0, 0, 0), x0, y0, z0)
	n += corner(hash(i1, j1, k1), x0-float64(i1)+g3, y0-float64(j1)+g3, z0-float64(k1)+g3)
	n += corner(hash(i2, j2, k2), x0-float64(i2)+2*g3, y0-float64(j2)+2*g3, z0-float64(k2)+2*g3)
	n += corner(hash(1, 1, 1), x0-1+3*g3, y0-1+3*g3, z0-1+3*g3)
	return clamp1(32 * n)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

func clamp1(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
