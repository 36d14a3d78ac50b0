package block

// Face is an axis-aligned block face. The numeric values double as the
// primary-axis encoding in the meta byte and the face id packed into vertices.
type Face uint8

const (
	Top Face = iota
	Bottom
	Right
	Left
	Front
	Back
)

var Faces = [6]Face{Top, Bottom, Right, Left, Front, Back}

var faceNormals = [6][3]int{
	Top:    {0, 1, 0},
	Bottom: {0, -1, 0},
	Right:  {1, 0, 0},
	Left:   {-1, 0, 0},
	Front:  {0, 0, 1},
	Back:   {0, 0, -1},
}

func (f Face) Normal() [3]int { return faceNormals[f] }

func (f Face) String() string {
	switch f {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Right:
		return "right"
	case Left:
		return "left"
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return "?"
}

func faceOf(v [3]int) (Face, bool) {
	for i, n := range faceNormals {
		if n == v {
			return Face(i), true
		}
	}
	return Top, false
}

// forward vectors indexed by [primary][secondary].
var forwardTable = [6][4][3]int{
	Top:    {{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}},
	Bottom: {{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}},
	Right:  {{0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
	Left:   {{0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
	Front:  {{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {-1, 0, 0}},
	Back:   {{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {-1, 0, 0}},
}

func cross(a, b [3]int) [3]int {
	return [3]int{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// RotateFace maps a model-space face to the world face it ends up on after
// applying the block's orientation (columns right, up, forward).
func RotateFace(b Block, face Face) Face {
	p := b.Primary()
	up := faceNormals[p]
	fwd := forwardTable[p][b.Secondary()]
	right := cross(up, fwd)

	n := faceNormals[face]
	var out [3]int
	for i := 0; i < 3; i++ {
		out[i] = right[i]*n[0] + up[i]*n[1] + fwd[i]*n[2]
	}
	f, ok := faceOf(out)
	if !ok {
		assertf(false, "rotation of %v produced %v", face, out)
		return face
	}
	return f
}
