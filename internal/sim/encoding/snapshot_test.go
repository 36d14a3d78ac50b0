package encoding

import (
	"testing"

	"voxelgrid.ai/internal/sim/world/terrain/gen"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

func TestExportImportChunksRoundTrip(t *testing.T) {
	g := gen.New(gen.NewConfig(8, nil))
	src := store.NewChunkStore(g)
	src.GenerateRangeInclusive(-1, 0, 0, 0, nil)

	exported := ExportChunks(src)
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported chunks, got %d", len(exported))
	}
	if exported[0].X != -1 || exported[1].X != 0 {
		t.Fatalf("export not in key order: %d, %d", exported[0].X, exported[1].X)
	}

	dst := store.NewChunkStore(g)
	if err := ImportChunks(dst, exported); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	for k, want := range src.Chunks {
		got := dst.Chunks[k]
		if got == nil {
			t.Fatalf("missing imported chunk %d,%d", want.X, want.Z)
		}
		// Import relights, so the full values match too.
		assertSameChunk(t, want, got)
	}
}

func TestImportChunksRejectsMismatchedPosition(t *testing.T) {
	s := store.NewChunkStore(nil)
	exported := ExportChunks(func() *store.ChunkStore {
		src := store.NewChunkStore(nil)
		src.Insert(store.NewChunk(4, 4))
		return src
	}())
	exported[0].X = 5
	if err := ImportChunks(s, exported); err == nil {
		t.Fatalf("expected position mismatch error")
	}
}
