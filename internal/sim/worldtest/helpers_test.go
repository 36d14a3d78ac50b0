package worldtest

import (
	"testing"

	"voxelgrid.ai/internal/protocol"
	world "voxelgrid.ai/internal/sim/world"
	"voxelgrid.ai/internal/sim/world/block"
)

func ofType[T protocol.Message](msgs []protocol.Message) []T {
	var out []T
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func errorCodes(msgs []protocol.Message) []string {
	var out []string
	for _, e := range ofType[protocol.ServerError](msgs) {
		out = append(out, e.Code)
	}
	return out
}

// surfaceBlock returns the top solid block of local column (lx, lz) of chunk 0,0.
func surfaceBlock(t *testing.T, w *world.World, lx, lz int) (protocol.BlockPos, block.Block) {
	t.Helper()
	c, ok := w.DebugChunk(0, 0)
	if !ok {
		t.Fatalf("chunk 0,0 not loaded")
	}
	y := c.SurfaceY(lx, lz)
	if y < 0 {
		t.Fatalf("column %d,%d has no surface", lx, lz)
	}
	return protocol.BlockPos{int32(lx), int32(y), int32(lz)}, c.Get(lx, y, lz)
}

func smallWorld() world.WorldConfig {
	return world.WorldConfig{Seed: 99, InitialRadius: 1, MaxInitial: 9, FlushEveryEdits: 1000}
}
