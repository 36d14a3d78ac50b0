package encoding

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// WireLevel is the deflate level used for chunk payloads.
const WireLevel = 6

// maxWireChunk bounds inflated payloads. A chunk where every cell is a
// distinct run still fits well below this.
const maxWireChunk = 4 << 20

// EncodeWire returns deflate(MarshalCompressed(Compress(c))).
func EncodeWire(c *store.Chunk) ([]byte, error) {
	raw := MarshalCompressed(Compress(c))
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, WireLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("deflate chunk: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate chunk: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeWire(data []byte) (*store.Chunk, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	raw, err := io.ReadAll(io.LimitReader(r, maxWireChunk+1))
	if err != nil {
		return nil, fmt.Errorf("inflate chunk: %w", err)
	}
	if len(raw) > maxWireChunk {
		return nil, fmt.Errorf("inflate chunk: payload exceeds %d bytes", maxWireChunk)
	}
	cc, err := UnmarshalCompressed(raw)
	if err != nil {
		return nil, err
	}
	return Decompress(cc)
}
