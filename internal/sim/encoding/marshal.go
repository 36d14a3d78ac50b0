package encoding

import (
	"encoding/binary"
	"fmt"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

const compressedVersion = 1

// MarshalCompressed lays out a CompressedChunk as
//
//	version byte, varint x, varint z,
//	per slice: uvarint group count,
//	  per group: kind byte, meta byte, index runs.
func MarshalCompressed(cc CompressedChunk) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, compressedVersion)
	buf = binary.AppendVarint(buf, int64(cc.X))
	buf = binary.AppendVarint(buf, int64(cc.Z))
	for _, groups := range cc.Slices {
		buf = binary.AppendUvarint(buf, uint64(len(groups)))
		for _, b := range sortedBlocks(groups) {
			buf = append(buf, byte(b.Kind), b.Meta)
			buf = EncodeIndexRuns(buf, groups[b])
		}
	}
	return buf
}

func UnmarshalCompressed(data []byte) (CompressedChunk, error) {
	var cc CompressedChunk
	if len(data) == 0 {
		return cc, ErrShortBuffer
	}
	if data[0] != compressedVersion {
		return cc, fmt.Errorf("%w: %d", ErrVersion, data[0])
	}
	off := 1
	x, n := binary.Varint(data[off:])
	if n <= 0 {
		return cc, ErrShortBuffer
	}
	off += n
	z, n := binary.Varint(data[off:])
	if n <= 0 {
		return cc, ErrShortBuffer
	}
	off += n
	cc.X, cc.Z = int32(x), int32(z)

	for s := range cc.Slices {
		count, n := binary.Uvarint(data[off:])
		if n <= 0 {
			return cc, fmt.Errorf("slice %d: %w", s, ErrShortBuffer)
		}
		off += n
		if count > store.SliceVolume {
			return cc, fmt.Errorf("slice %d: %w: %d groups", s, ErrBadIndex, count)
		}
		groups := make(map[block.Block][]uint16, count)
		for g := uint64(0); g < count; g++ {
			if off+2 > len(data) {
				return cc, fmt.Errorf("slice %d: %w", s, ErrShortBuffer)
			}
			b := block.Block{Kind: block.Kind(data[off]), Meta: data[off+1]}
			off += 2
			if !b.Kind.Valid() {
				return cc, fmt.Errorf("slice %d: %w: %d", s, ErrBadKind, b.Kind)
			}
			idx, used, err := DecodeIndexRuns(data[off:], store.SliceVolume)
			if err != nil {
				return cc, fmt.Errorf("slice %d: %w", s, err)
			}
			off += used
			groups[b] = append(groups[b], idx...)
		}
		cc.Slices[s] = groups
	}
	return cc, nil
}
