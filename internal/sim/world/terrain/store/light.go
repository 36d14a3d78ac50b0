package store

import "voxelgrid.ai/internal/sim/world/block"

type lightCell struct {
	x, y, z int // absolute
	level   uint8
}

var lightSteps = [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

// CalculateInitialLighting recomputes sky light for every loaded chunk.
// Light is reset, each column is lit from the top down to and including its
// first occluder, and the lit cells flood outward through transparent blocks
// losing one level per step. Unloaded neighbours are skipped.
func (s *ChunkStore) CalculateInitialLighting() {
	queue := make([]lightCell, 0, 4096)
	for _, c := range s.Chunks {
		resetLight(c)
	}
	for _, c := range s.Chunks {
		queue = seedSky(c, queue)
	}
	s.flood(queue, nil)
}

// LightChunks lights newly loaded chunks without touching any other chunk.
// Sky columns of the new chunks are seeded as in CalculateInitialLighting,
// and the border light of already loaded neighbours flows in. Light never
// flows back out, so chunks already handed out keep their values.
func (s *ChunkStore) LightChunks(cs []*Chunk) {
	if len(cs) == 0 {
		return
	}
	target := make(map[uint64]bool, len(cs))
	for _, c := range cs {
		target[c.Index()] = true
	}
	queue := make([]lightCell, 0, 4096)
	for _, c := range cs {
		resetLight(c)
		queue = seedSky(c, queue)
	}
	for _, c := range cs {
		queue = s.seedBorders(c, target, queue)
	}
	s.flood(queue, target)
}

func resetLight(c *Chunk) {
	for sl := range c.Slices {
		for i, b := range c.Slices[sl] {
			if b.Light() != 0 {
				c.Slices[sl][i] = b.WithLight(0)
			}
		}
	}
}

// seedSky lights each column from the top down to and including its first
// occluder.
func seedSky(c *Chunk, queue []lightCell) []lightCell {
	bx, bz := int(c.X)*SliceSize, int(c.Z)*SliceSize
	for z := 0; z < SliceSize; z++ {
		for x := 0; x < SliceSize; x++ {
			for y := Height - 1; y >= 0; y-- {
				b := c.Get(x, y, z)
				c.setLight(x, y, z, block.MaxLight)
				queue = append(queue, lightCell{bx + x, y, bz + z, block.MaxLight})
				if !b.IsTransparent() {
					break
				}
			}
		}
	}
	return queue
}

// seedBorders queues the lit cells of loaded, non-target neighbours that
// face c.
func (s *ChunkStore) seedBorders(c *Chunk, target map[uint64]bool, queue []lightCell) []lightCell {
	bx, bz := int(c.X)*SliceSize, int(c.Z)*SliceSize
	for _, d := range [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n, ok := s.Chunk(c.X+d[0], c.Z+d[1])
		if !ok || target[n.Index()] {
			continue
		}
		for i := 0; i < SliceSize; i++ {
			// Local coordinates in n of the column touching c.
			lx, lz := i, i
			switch {
			case d[0] == 1:
				lx = 0
			case d[0] == -1:
				lx = SliceSize - 1
			case d[1] == 1:
				lz = 0
			default:
				lz = SliceSize - 1
			}
			wx := bx + int(d[0])*SliceSize + lx
			wz := bz + int(d[1])*SliceSize + lz
			for y := 0; y < Height; y++ {
				if l := n.Get(lx, y, lz).Light(); l > 1 {
					queue = append(queue, lightCell{wx, y, wz, l})
				}
			}
		}
	}
	return queue
}

// flood relaxes light outward from the queued cells through transparent
// blocks, one level per step. A non-nil only restricts writes to those
// chunks.
func (s *ChunkStore) flood(queue []lightCell, only map[uint64]bool) {
	for head := 0; head < len(queue); head++ {
		cell := queue[head]
		if cell.level <= 1 {
			continue
		}
		next := cell.level - 1
		for _, d := range lightSteps {
			x, y, z := cell.x+d[0], cell.y+d[1], cell.z+d[2]
			if y < 0 || y >= Height {
				continue
			}
			cx, cz, lx, lz := ChunkOf(x, z)
			c, ok := s.Chunk(cx, cz)
			if !ok || (only != nil && !only[c.Index()]) {
				continue
			}
			nb := c.Get(lx, y, lz)
			if !nb.IsTransparent() || nb.Light() >= next {
				continue
			}
			c.setLight(lx, y, lz, next)
			queue = append(queue, lightCell{x, y, z, next})
		}
	}
}
