package chunkdb

import (
	"bytes"
	"path/filepath"
	"testing"

	"voxelgrid.ai/internal/sim/world/logic/mathx"
)

func TestPutGet(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "chunks.ldb"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, ok, err := db.Get(1, 2); err != nil || ok {
		t.Fatalf("missing chunk: ok=%v err=%v", ok, err)
	}
	if err := db.Put(1, 2, []byte("abc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := db.Get(1, 2)
	if err != nil || !ok || !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}
	if err := db.Delete(1, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := db.Get(1, 2); ok {
		t.Fatalf("chunk still present after delete")
	}
}

func TestBatchAndForEach(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks.ldb")
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := map[uint64][]byte{
		mathx.XZToIndex(0, 0):   {1},
		mathx.XZToIndex(-1, 5):  {2, 2},
		mathx.XZToIndex(30, -7): {3, 3, 3},
	}
	if err := db.PutBatch(want); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	seen := map[uint64]int{}
	var last uint64
	first := true
	err = db.ForEach(func(idx uint64, data []byte) error {
		if !first && idx <= last {
			t.Fatalf("keys out of order: %d after %d", idx, last)
		}
		first, last = false, idx
		seen[idx] = len(data)
		return nil
	})
	if err != nil {
		t.Fatalf("foreach: %v", err)
	}
	for k, v := range want {
		if seen[k] != len(v) {
			t.Fatalf("key %d: len=%d want %d", k, seen[k], len(v))
		}
	}
	if n, _ := db.Count(); n != 3 {
		t.Fatalf("count=%d", n)
	}
}
