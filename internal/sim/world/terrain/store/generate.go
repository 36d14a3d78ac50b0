package store

import "voxelgrid.ai/internal/sim/world/terrain/gen"

// GenerateChunk builds chunk (cx, cz) from the generator without inserting it.
func (s *ChunkStore) GenerateChunk(cx, cz int32) *Chunk {
	return Generate(s.Gen, cx, cz)
}

func Generate(g *gen.Generator, cx, cz int32) *Chunk {
	c := NewChunk(cx, cz)
	for z := 0; z < SliceSize; z++ {
		for x := 0; x < SliceSize; x++ {
			col := g.Column(int(cx)*SliceSize+x, int(cz)*SliceSize+z)
			top := col.Height
			if top >= Height {
				top = Height - 1
			}
			for y := 0; y <= top; y++ {
				b := g.BlockInColumn(col, y)
				if b.IsAir() {
					continue
				}
				si := y / SliceSize
				c.Slices[si][LocalIndex(x, y%SliceSize, z)] = b
				c.FullAir[si] = false
			}
		}
	}
	c.dirty = true
	return c
}

// Insert adds or replaces a chunk, keyed by its position.
func (s *ChunkStore) Insert(c *Chunk) {
	s.Chunks[c.Index()] = c
}

func (s *ChunkStore) Remove(cx, cz int32) {
	delete(s.Chunks, chunkKey(cx, cz))
}

func (s *ChunkStore) Chunk(cx, cz int32) (*Chunk, bool) {
	c, ok := s.Chunks[chunkKey(cx, cz)]
	return c, ok
}

func (s *ChunkStore) GetOrGenChunk(cx, cz int32) *Chunk {
	if c, ok := s.Chunk(cx, cz); ok {
		return c
	}
	c := s.GenerateChunk(cx, cz)
	_ = c.Digest()
	s.Insert(c)
	return c
}

// GenerateRangeInclusive generates and inserts every chunk in the rectangle
// spanned by the two corners, calls onFinish for each new chunk, then relights
// everything loaded. Chunks already present are kept.
func (s *ChunkStore) GenerateRangeInclusive(x0, z0, x1, z1 int32, onFinish func(*Chunk)) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}
	ps := make([]ChunkPos, 0, int(x1-x0+1)*int(z1-z0+1))
	for cz := z0; cz <= z1; cz++ {
		for cx := x0; cx <= x1; cx++ {
			ps = append(ps, ChunkPos{X: cx, Z: cz})
		}
	}
	s.GenerateMissing(ps, onFinish)
	s.CalculateInitialLighting()
}

// GenerateMissing generates and inserts each position not already loaded,
// in order, calling onFinish for every new chunk. Light is left to the
// caller.
func (s *ChunkStore) GenerateMissing(ps []ChunkPos, onFinish func(*Chunk)) []*Chunk {
	var out []*Chunk
	for _, p := range ps {
		if _, ok := s.Chunk(p.X, p.Z); ok {
			continue
		}
		c := s.GenerateChunk(p.X, p.Z)
		s.Insert(c)
		out = append(out, c)
		if onFinish != nil {
			onFinish(c)
		}
	}
	return out
}
