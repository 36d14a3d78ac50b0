package worldtest

import (
	"testing"

	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/encoding"
	world "voxelgrid.ai/internal/sim/world"
)

func TestFlushAndReloadFromStorage(t *testing.T) {
	cfg := smallWorld()
	cfg.FlushEveryEdits = 1
	h := NewHarness(t, cfg)
	h.Join("alice")
	h.Send("alice", protocol.RequestChunk{X: 0, Z: 0})
	pos, _ := surfaceBlock(t, h.W, 8, 8)
	h.Send("alice", protocol.BreakBlock{Pos: pos})

	if _, ok := h.Storage.Data[chunkIndex(0, 0)]; !ok {
		t.Fatalf("edited chunk not flushed")
	}
	if h.W.DebugDirty() != 0 || h.W.Stats().Flushes != 1 {
		t.Fatalf("dirty=%d flushes=%d", h.W.DebugDirty(), h.W.Stats().Flushes)
	}

	// A fresh world over the same storage serves the edited chunk.
	h2 := NewHarnessWithStorage(t, cfg, h.Storage)
	h2.Join("bob")
	h2.Send("bob", protocol.RequestChunk{X: 0, Z: 0})
	chunks := ofType[protocol.ChunkProvided](h2.Drain("bob"))
	if len(chunks) != 1 {
		t.Fatalf("chunks=%d", len(chunks))
	}
	c, err := encoding.DecodeWire(chunks[0].Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !c.Get(int(pos[0]), int(pos[1]), int(pos[2])).IsAir() {
		t.Fatalf("edit lost across restart")
	}
	if h2.Index.Count(world.SourceDB) != 1 || h2.Index.Count(world.SourceGenerated) != 0 {
		t.Fatalf("rows=%+v", h2.Index.Rows)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.Send("alice", protocol.RequestInitialChunks{})
	pos, _ := surfaceBlock(t, h.W, 3, 3)
	h.Send("alice", protocol.BreakBlock{Pos: pos})

	snap := h.W.ExportSnapshot()
	if len(snap.Chunks) != 9 || snap.Seed != 99 {
		t.Fatalf("snapshot chunks=%d seed=%d", len(snap.Chunks), snap.Seed)
	}

	h2 := NewHarness(t, smallWorld())
	if err := h2.W.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	for _, p := range h.W.DebugLoaded() {
		a, _ := h.W.DebugChunk(p.X, p.Z)
		b, ok := h2.W.DebugChunk(p.X, p.Z)
		if !ok {
			t.Fatalf("chunk %d,%d missing after import", p.X, p.Z)
		}
		if a.Digest() != b.Digest() {
			t.Fatalf("chunk %d,%d differs after import", p.X, p.Z)
		}
	}
	if h2.W.DebugDirty() != 9 {
		t.Fatalf("imported chunks not dirty: %d", h2.W.DebugDirty())
	}

	other := smallWorld()
	other.Seed = 1
	h3 := NewHarness(t, other)
	if err := h3.W.ImportSnapshot(snap); err == nil {
		t.Fatalf("seed mismatch accepted")
	}
}
