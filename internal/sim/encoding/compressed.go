package encoding

import (
	"errors"
	"fmt"
	"sort"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

var (
	ErrBadIndex    = errors.New("encoding: local index out of range")
	ErrCoverage    = errors.New("encoding: slice not covered exactly once")
	ErrBadKind     = errors.New("encoding: unknown block kind")
	ErrShortBuffer = errors.New("encoding: truncated input")
	ErrVersion     = errors.New("encoding: unsupported version")
)

// CompressedChunk stores, per slice, the local indices holding each distinct
// block value. Every local index of a slice appears in exactly one list.
type CompressedChunk struct {
	X, Z   int32
	Slices [store.SliceCount]map[block.Block][]uint16
}

func Compress(c *store.Chunk) CompressedChunk {
	out := CompressedChunk{X: c.X, Z: c.Z}
	for s := range c.Slices {
		groups := map[block.Block][]uint16{}
		for i, b := range c.Slices[s] {
			groups[b] = append(groups[b], uint16(i))
		}
		out.Slices[s] = groups
	}
	return out
}

func Decompress(cc CompressedChunk) (*store.Chunk, error) {
	c := store.NewChunk(cc.X, cc.Z)
	var seen [store.SliceVolume]bool
	for s, groups := range cc.Slices {
		clear(seen[:])
		covered := 0
		for b, idx := range groups {
			if !b.Kind.Valid() {
				return nil, fmt.Errorf("slice %d: %w: %d", s, ErrBadKind, b.Kind)
			}
			for _, i := range idx {
				if int(i) >= store.SliceVolume {
					return nil, fmt.Errorf("slice %d: %w: %d", s, ErrBadIndex, i)
				}
				if seen[i] {
					return nil, fmt.Errorf("slice %d: %w: %d listed twice", s, ErrCoverage, i)
				}
				seen[i] = true
				covered++
				c.Slices[s][i] = b
			}
		}
		if covered != store.SliceVolume {
			return nil, fmt.Errorf("slice %d: %w: %d of %d cells", s, ErrCoverage, covered, store.SliceVolume)
		}
		c.RecomputeFullAir(s)
	}
	return c, nil
}

// sortedBlocks orders group keys by kind then meta so serialization is stable.
func sortedBlocks(groups map[block.Block][]uint16) []block.Block {
	keys := make([]block.Block, 0, len(groups))
	for b := range groups {
		keys = append(keys, b)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Meta < keys[j].Meta
	})
	return keys
}
