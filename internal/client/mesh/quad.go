package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Quad is one transparent face kept for depth sorting. Vertices are stored
// so that QuadIndices produces the correct winding.
type Quad struct {
	Center   mgl32.Vec3
	Vertices [4]SurfaceVertex
}

var quadPattern = [6]uint32{0, 1, 2, 1, 3, 2}

// canonicalWinding reorders a face whose index table runs clockwise in
// quadPattern terms so the shared pattern can be used for every quad.
func canonicalWinding(v [4]SurfaceVertex, idx [6]uint32) [4]SurfaceVertex {
	if idx == quadPattern {
		return v
	}
	return [4]SurfaceVertex{v[0], v[2], v[1], v[3]}
}

// SortQuads orders quads farthest first from the camera.
func SortQuads(quads []Quad, camera mgl32.Vec3) {
	sort.SliceStable(quads, func(i, j int) bool {
		return quads[i].Center.Sub(camera).Len() > quads[j].Center.Sub(camera).Len()
	})
}

// QuadIndices returns the index list for n consecutive quads.
func QuadIndices(n int) []uint32 {
	out := make([]uint32, 0, n*6)
	for q := 0; q < n; q++ {
		base := uint32(q * 4)
		for _, i := range quadPattern {
			out = append(out, base+i)
		}
	}
	return out
}

// QuadGeometry flattens sorted quads into a drawable geometry.
func QuadGeometry(quads []Quad) Geometry {
	g := Geometry{Vertices: make([]SurfaceVertex, 0, len(quads)*4)}
	for _, q := range quads {
		g.Vertices = append(g.Vertices, q.Vertices[:]...)
	}
	g.Indices = QuadIndices(len(quads))
	g.IndexCount = uint32(len(g.Indices))
	return g
}
