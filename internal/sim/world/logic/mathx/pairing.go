package mathx

// ChunkCoordLimit bounds chunk coordinates to [-ChunkCoordLimit, ChunkCoordLimit).
// Inside that range the Cantor pairing below fits in a uint64 without overflow.
const ChunkCoordLimit = 1 << 30

// zigzag maps ..., -2, -1, 0, 1, 2, ... to 3, 1, 0, 2, 4, ...
func zigzag(v int32) uint64 {
	if v >= 0 {
		return 2 * uint64(v)
	}
	return 2*uint64(-int64(v)) - 1
}

// XZToIndex keys a chunk column by Cantor-pairing its zig-zagged coordinates.
// It is injective over the chunk coordinate range and is the same function on
// client and server. It is not meant to be inverted: whoever stores the key
// keeps the position next to it.
func XZToIndex(x, z int32) uint64 {
	a := zigzag(x)
	b := zigzag(z)
	s := a + b
	return s*(s+1)/2 + b
}

// InChunkRange reports whether (x, z) lies inside the pairable range.
func InChunkRange(x, z int32) bool {
	return x >= -ChunkCoordLimit && x < ChunkCoordLimit && z >= -ChunkCoordLimit && z < ChunkCoordLimit
}
