package log

import (
	"path/filepath"
	"testing"
	"time"

	"voxelgrid.ai/internal/sim/world"
)

func TestEditLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewEditLogger(dir)
	l.w.now = func() time.Time { return time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC) }

	in := []world.AuditEntry{
		{Seq: 1, Actor: "alice", Action: world.ActionBreak, Pos: [3]int32{1, 64, -2}, From: 3},
		{Seq: 2, Actor: "alice", Action: world.ActionPlace, Pos: [3]int32{1, 64, -2}, To: 3},
	}
	for _, e := range in {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := EditFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	if filepath.Base(files[0]) != "edits-2026-03-01-10.jsonl.zst" {
		t.Fatalf("unexpected name %s", files[0])
	}
	got, err := ReadEdits(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("got %d entries", len(got))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("entry %d: %+v want %+v", i, got[i], in[i])
		}
	}
}

func TestEditLoggerRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewEditLogger(dir)
	hour := 10
	l.w.now = func() time.Time { return time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC) }

	_ = l.WriteAudit(world.AuditEntry{Seq: 1})
	hour = 11
	_ = l.WriteAudit(world.AuditEntry{Seq: 2})
	_ = l.Close()

	files, _ := EditFiles(dir)
	if len(files) != 2 {
		t.Fatalf("want 2 rotated files, got %v", files)
	}
}
