package store

import (
	"crypto/sha256"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
)

const (
	SliceSize   = 16
	SliceCount  = 16
	SliceVolume = SliceSize * SliceSize * SliceSize
	Height      = SliceSize * SliceCount
)

// LocalIndex addresses a block inside one 16³ slice.
func LocalIndex(x, y, z int) int {
	return y*SliceSize*SliceSize + z*SliceSize + x
}

// LocalPos is the inverse of LocalIndex.
func LocalPos(i int) (x, y, z int) {
	return i % SliceSize, i / (SliceSize * SliceSize), (i / SliceSize) % SliceSize
}

type Chunk struct {
	X, Z    int32
	Slices  [SliceCount][]block.Block
	FullAir [SliceCount]bool

	dirty bool
	hash  [32]byte
}

// NewChunk returns an all-air chunk.
func NewChunk(x, z int32) *Chunk {
	c := &Chunk{X: x, Z: z, dirty: true}
	for s := range c.Slices {
		sl := make([]block.Block, SliceVolume)
		for i := range sl {
			sl[i] = block.New(block.Air)
		}
		c.Slices[s] = sl
		c.FullAir[s] = true
	}
	return c
}

func (c *Chunk) Index() uint64 { return mathx.XZToIndex(c.X, c.Z) }

// Get reads chunk-local coordinates; y spans the full chunk height.
func (c *Chunk) Get(x, y, z int) block.Block {
	return c.Slices[y/SliceSize][LocalIndex(x, y%SliceSize, z)]
}

func (c *Chunk) Set(x, y, z int, b block.Block) {
	s := y / SliceSize
	i := LocalIndex(x, y%SliceSize, z)
	if c.Slices[s][i] == b {
		return
	}
	c.Slices[s][i] = b
	c.dirty = true
	if !b.IsAir() {
		c.FullAir[s] = false
	} else if !c.FullAir[s] {
		c.RecomputeFullAir(s)
	}
}

// setLight writes only the light nibble and leaves the digest alone: light
// is derived data and is recomputed after load.
func (c *Chunk) setLight(x, y, z int, l uint8) {
	s := y / SliceSize
	i := LocalIndex(x, y%SliceSize, z)
	c.Slices[s][i] = c.Slices[s][i].WithLight(l)
}

func (c *Chunk) RecomputeFullAir(slice int) {
	for _, b := range c.Slices[slice] {
		if !b.IsAir() {
			c.FullAir[slice] = false
			return
		}
	}
	c.FullAir[slice] = true
}

func (c *Chunk) Clone() *Chunk {
	out := &Chunk{X: c.X, Z: c.Z, FullAir: c.FullAir, dirty: c.dirty, hash: c.hash}
	for s := range c.Slices {
		out.Slices[s] = append([]block.Block(nil), c.Slices[s]...)
	}
	return out
}

// SurfaceY is the height of the topmost non-transparent block, or -1.
func (c *Chunk) SurfaceY(x, z int) int {
	for y := Height - 1; y >= 0; y-- {
		if !c.Get(x, y, z).IsTransparent() {
			return y
		}
	}
	return -1
}

func (c *Chunk) NonAirCount() int {
	n := 0
	for s := range c.Slices {
		if c.FullAir[s] {
			continue
		}
		for _, b := range c.Slices[s] {
			if !b.IsAir() {
				n++
			}
		}
	}
	return n
}

// Digest hashes kind and orientation of every block. Light is excluded.
func (c *Chunk) Digest() [32]byte {
	if c.dirty {
		h := sha256.New()
		buf := make([]byte, 0, 2*SliceVolume)
		for s := range c.Slices {
			buf = buf[:0]
			for _, b := range c.Slices[s] {
				buf = append(buf, byte(b.Kind), b.WithLight(0).Meta)
			}
			h.Write(buf)
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// Edit describes one accepted block change.
type Edit struct {
	X, Y, Z int
	Old     block.Block
	New     block.Block
}

type ChunkStore struct {
	Gen    *gen.Generator
	Chunks map[uint64]*Chunk

	// OnEdit, when set, observes every accepted BreakBlock/PlaceBlock.
	OnEdit func(Edit)
}

func NewChunkStore(g *gen.Generator) *ChunkStore {
	return &ChunkStore{
		Gen:    g,
		Chunks: map[uint64]*Chunk{},
	}
}
