package encoding

import (
	"fmt"

	snapv1 "voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// ExportChunks converts the loaded chunks, in key order, into snapshot
// chunks. Light is stripped since it is rebuilt after import.
func ExportChunks(s *store.ChunkStore) []snapv1.ChunkV1 {
	keys := s.LoadedKeys()
	out := make([]snapv1.ChunkV1, 0, len(keys))
	for _, k := range keys {
		c, ok := s.Chunk(k.X, k.Z)
		if !ok {
			continue
		}
		out = append(out, snapv1.ChunkV1{
			X:    c.X,
			Z:    c.Z,
			Data: MarshalCompressed(withoutLight(Compress(c))),
		})
	}
	return out
}

// ImportChunks inserts snapshot chunks into s and relights the store.
func ImportChunks(s *store.ChunkStore, chunks []snapv1.ChunkV1) error {
	for _, ch := range chunks {
		cc, err := UnmarshalCompressed(ch.Data)
		if err != nil {
			return fmt.Errorf("snapshot chunk %d,%d: %w", ch.X, ch.Z, err)
		}
		if cc.X != ch.X || cc.Z != ch.Z {
			return fmt.Errorf("snapshot chunk %d,%d: payload says %d,%d", ch.X, ch.Z, cc.X, cc.Z)
		}
		c, err := Decompress(cc)
		if err != nil {
			return fmt.Errorf("snapshot chunk %d,%d: %w", ch.X, ch.Z, err)
		}
		_ = c.Digest()
		s.Insert(c)
	}
	s.CalculateInitialLighting()
	return nil
}

func withoutLight(cc CompressedChunk) CompressedChunk {
	out := CompressedChunk{X: cc.X, Z: cc.Z}
	for sl, groups := range cc.Slices {
		merged := make(map[block.Block][]uint16, len(groups))
		for b, idx := range groups {
			dark := b.WithLight(0)
			merged[dark] = append(merged[dark], idx...)
		}
		out.Slices[sl] = merged
	}
	return out
}
