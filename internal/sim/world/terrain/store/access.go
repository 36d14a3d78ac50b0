package store

import (
	"sort"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
)

type ChunkPos struct {
	X, Z int32
}

func (p ChunkPos) Index() uint64 { return mathx.XZToIndex(p.X, p.Z) }

func chunkKey(cx, cz int32) uint64 { return mathx.XZToIndex(cx, cz) }

// ChunkOf splits an absolute block column into chunk and local coordinates.
func ChunkOf(x, z int) (cx, cz int32, lx, lz int) {
	return int32(mathx.FloorDiv(x, SliceSize)), int32(mathx.FloorDiv(z, SliceSize)),
		mathx.Mod(x, SliceSize), mathx.Mod(z, SliceSize)
}

func (s *ChunkStore) LoadedKeys() []ChunkPos {
	keys := make([]ChunkPos, 0, len(s.Chunks))
	for _, c := range s.Chunks {
		keys = append(keys, ChunkPos{X: c.X, Z: c.Z})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}

// GetBlock reads an absolute position. ok is false when the chunk is not
// loaded or y is outside the world.
func (s *ChunkStore) GetBlock(x, y, z int) (block.Block, bool) {
	if y < 0 || y >= Height {
		return block.Block{}, false
	}
	cx, cz, lx, lz := ChunkOf(x, z)
	c, ok := s.Chunk(cx, cz)
	if !ok {
		return block.Block{}, false
	}
	return c.Get(lx, y, lz), true
}

// BreakBlock replaces the block at (x, y, z) with air, keeping its light.
// Unbreakable targets and unloaded chunks are left untouched and report false.
func (s *ChunkStore) BreakBlock(x, z, y int) (block.Block, bool) {
	if y < 0 || y >= Height {
		return block.Block{}, false
	}
	cx, cz, lx, lz := ChunkOf(x, z)
	c, ok := s.Chunk(cx, cz)
	if !ok {
		return block.Block{}, false
	}
	old := c.Get(lx, y, lz)
	if old.IsUnbreakable() {
		return old, false
	}
	nb := block.New(block.Air).WithLight(old.Light())
	c.Set(lx, y, lz, nb)
	s.emit(Edit{X: x, Y: y, Z: z, Old: old, New: nb})
	return old, true
}

// PlaceBlock writes b into an air cell. The full value, meta included, is
// stored so that a break followed by a place of the same block restores it.
func (s *ChunkStore) PlaceBlock(x, z, y int, b block.Block) bool {
	if y < 0 || y >= Height || !b.Kind.Valid() || b.IsAir() {
		return false
	}
	cx, cz, lx, lz := ChunkOf(x, z)
	c, ok := s.Chunk(cx, cz)
	if !ok {
		return false
	}
	old := c.Get(lx, y, lz)
	if !old.IsAir() {
		return false
	}
	c.Set(lx, y, lz, b)
	s.emit(Edit{X: x, Y: y, Z: z, Old: old, New: b})
	return true
}

func (s *ChunkStore) emit(e Edit) {
	if s.OnEdit != nil {
		s.OnEdit(e)
	}
}

// Snapshot returns deep copies of every loaded chunk keyed by XZ index.
// Callers may read it from other goroutines while the store keeps changing.
func (s *ChunkStore) Snapshot() map[uint64]*Chunk {
	out := make(map[uint64]*Chunk, len(s.Chunks))
	for k, c := range s.Chunks {
		out[k] = c.Clone()
	}
	return out
}
