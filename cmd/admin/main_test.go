package main

import (
	"os"
	"path/filepath"
	"testing"

	"voxelgrid.ai/internal/sim/encoding"
	"voxelgrid.ai/internal/sim/world"
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

func TestParseAABBOrdersCorners(t *testing.T) {
	min, max, err := parseAABB("5,10,-3:1,2,7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if min != [3]int{1, 2, -3} || max != [3]int{5, 10, 7} {
		t.Fatalf("min=%v max=%v", min, max)
	}
	if _, _, err := parseAABB("1,2,3"); err == nil {
		t.Fatalf("expected error for missing second corner")
	}
	if _, _, err := parseAABB("1,2:3,4,5"); err == nil {
		t.Fatalf("expected error for short vector")
	}
}

func TestLatestSnapshotPicksHighestSeq(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"9.snap.zst", "120.snap.zst", "13.snap.zst", "200.rollback.snap.zst", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := latestSnapshot(dir); filepath.Base(got) != "120.snap.zst" {
		t.Fatalf("latest=%q", got)
	}
	if got := latestSnapshot(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("missing dir: %q", got)
	}
}

func TestApplyRollbackRestoresNewestFirst(t *testing.T) {
	st := store.NewChunkStore(nil)
	c := store.NewChunk(0, 0)
	st.Insert(c)
	c.Set(2, 5, 3, block.New(block.Stone))

	stone := world.PackBlock(block.New(block.Stone))
	dirt := world.PackBlock(block.New(block.Dirt))
	air := world.PackBlock(block.New(block.Air))
	// Seq 1 placed dirt over air, seq 2 replaced dirt with stone. Undoing
	// newest first must land on air.
	edits := []world.AuditEntry{
		{Seq: 2, Pos: [3]int32{2, 5, 3}, From: dirt, To: stone},
		{Seq: 1, Pos: [3]int32{2, 5, 3}, From: air, To: dirt},
		{Seq: 3, Pos: [3]int32{40, 5, 3}, From: air, To: stone},
	}
	applied, skipped := applyRollback(st, edits)
	if applied != 2 || skipped != 1 {
		t.Fatalf("applied=%d skipped=%d", applied, skipped)
	}
	if got := c.Get(2, 5, 3); !got.IsAir() {
		t.Fatalf("block after rollback = %v", got)
	}
}

func TestWithinAABBInclusive(t *testing.T) {
	min, max := [3]int{0, 0, 0}, [3]int{4, 4, 4}
	if !withinAABB([3]int32{4, 0, 4}, min, max) {
		t.Fatalf("corner should be inside")
	}
	if withinAABB([3]int32{5, 0, 0}, min, max) {
		t.Fatalf("outside point reported inside")
	}
}

func TestSurfaceGrid(t *testing.T) {
	c := store.NewChunk(0, 0)
	c.Set(0, 10, 0, block.New(block.Stone))
	c.Set(3, 12, 0, block.New(block.Grass))
	c.Set(15, 40, 15, block.New(block.Sand))

	rows, err := surfaceGrid(encoding.EncodeRLE(encoding.SurfaceIDs(c)))
	if err != nil {
		t.Fatalf("surfaceGrid: %v", err)
	}
	if len(rows) != store.SliceSize {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0] != "S..G............" {
		t.Fatalf("row 0 = %q", rows[0])
	}
	if rows[15] != "...............S" {
		t.Fatalf("row 15 = %q", rows[15])
	}
	if rows[7] != "................" {
		t.Fatalf("row 7 = %q", rows[7])
	}

	if _, err := surfaceGrid(encoding.EncodeRLE([]uint16{1, 2, 3})); err == nil {
		t.Fatalf("expected error for short surface")
	}
	if _, err := surfaceGrid("!!not base64"); err == nil {
		t.Fatalf("expected error for bad encoding")
	}
}
