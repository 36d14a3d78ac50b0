package encoding

import (
	"testing"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

func TestRLE_RoundTrip(t *testing.T) {
	in := make([]uint16, 0, 200)
	in = append(in, 1, 1, 1, 2, 2, 3)
	for i := 0; i < 50; i++ {
		in = append(in, 7)
	}
	in = append(in, 9, 10, 10, 10)

	enc := EncodeRLE(in)
	out, err := DecodeRLE(enc, len(in))
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
	if _, err := DecodeRLE(enc, len(in)-1); err == nil {
		t.Fatalf("expected length limit error")
	}
}

func TestSurfaceIDs(t *testing.T) {
	c := store.NewChunk(0, 0)
	c.Set(2, 40, 0, block.New(block.Sand))
	c.Set(2, 10, 0, block.New(block.Stone))
	ids := SurfaceIDs(c)
	if len(ids) != 256 {
		t.Fatalf("len=%d", len(ids))
	}
	if ids[2] != uint16(block.Sand) || ids[3] != 0 {
		t.Fatalf("unexpected ids: %v", ids[:4])
	}
}
