package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// EncodeRLE encodes a sequence of block ids into base64(varint pairs).
// The pairs are (id, run_len) repeated. Used for surface map dumps.
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		b := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == b && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. Output longer than max ids is rejected.
func DecodeRLE(b64 string, max int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if uint64(len(out))+run > uint64(max) {
			return nil, fmt.Errorf("rle output exceeds %d ids", max)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	return out, nil
}

// SurfaceIDs lists, row by row, the kind of the topmost solid block of every
// column in a chunk (0 for columns with no solid block).
func SurfaceIDs(c *store.Chunk) []uint16 {
	out := make([]uint16, 0, store.SliceSize*store.SliceSize)
	for z := 0; z < store.SliceSize; z++ {
		for x := 0; x < store.SliceSize; x++ {
			id := uint16(0)
			if y := c.SurfaceY(x, z); y >= 0 {
				id = uint16(c.Get(x, y, z).Kind)
			}
			out = append(out, id)
		}
	}
	return out
}
