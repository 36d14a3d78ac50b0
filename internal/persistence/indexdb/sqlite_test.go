package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"voxelgrid.ai/internal/sim/catalogs"
	"voxelgrid.ai/internal/sim/tuning"
	"voxelgrid.ai/internal/sim/world"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqAudit}

	_ = s.WriteAudit(world.AuditEntry{Seq: 2})
	s.RecordChunk(world.ChunkRow{X: 1})

	st := s.Stats()
	if st.DropAuditTotal != 1 || st.DropChunkTotal != 1 {
		t.Fatalf("drops audit=%d chunk=%d", st.DropAuditTotal, st.DropChunkTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RecordsAndQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.RecordChunk(world.ChunkRow{X: 0, Z: 0, Index: 0, Digest: "aa", NonAir: 100, Source: world.SourceGenerated})
	s.RecordChunk(world.ChunkRow{X: 1, Z: 0, Index: 3, Digest: "bb", NonAir: 50, Source: world.SourceGenerated})
	// Later row for the same chunk replaces the first.
	s.RecordChunk(world.ChunkRow{X: 0, Z: 0, Index: 0, Digest: "cc", NonAir: 99, Source: world.SourceFlush})
	for i, actor := range []string{"bob", "alice", "bob"} {
		_ = s.WriteAudit(world.AuditEntry{
			Seq: uint64(i + 1), Time: "t", Actor: actor, Action: world.ActionBreak,
			Pos: [3]int32{4, int32(60 + i), 5}, From: 3,
		})
	}
	if err := s.UpsertCatalogs(catalogs.Default(), tuning.Defaults()); err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	sum, err := QuerySummary(ctx, s.db)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Chunks != 2 || sum.NonAir != 149 || sum.Edits != 3 || sum.LastEditSeq != 3 {
		t.Fatalf("summary=%+v", sum)
	}
	top, err := QueryTopEditors(ctx, s.db, 5)
	if err != nil || len(top) != 2 || top[0].Actor != "bob" || top[0].Edits != 2 {
		t.Fatalf("top=%+v err=%v", top, err)
	}
	col, err := QueryEditsAt(ctx, s.db, 4, 5)
	if err != nil || len(col) != 3 || col[0].Pos[1] != 60 || col[2].Seq != 3 {
		t.Fatalf("column=%+v err=%v", col, err)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 3 {
		t.Fatalf("catalog rows=%d err=%v", n, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
