package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "world.snap.zst")
	in := SnapshotV1{
		Header: Header{WorldID: "w1", Seq: 42},
		Seed:   -9,
		SpawnX: 3,
		SpawnZ: -4,
		Chunks: []ChunkV1{{X: 1, Z: -2, Data: []byte{1, 2, 3}}, {X: 0, Z: 0, Data: []byte{9}}},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Version != Version || h.WorldID != "w1" || h.Chunks != 2 {
		t.Fatalf("unexpected header: %+v", h)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if out.Seed != -9 || out.SpawnX != 3 || out.SpawnZ != -4 || len(out.Chunks) != 2 {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	if out.Chunks[0].X != 1 || out.Chunks[0].Z != -2 || string(out.Chunks[0].Data) != "\x01\x02\x03" {
		t.Fatalf("unexpected chunk: %+v", out.Chunks[0])
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error")
	}
}
