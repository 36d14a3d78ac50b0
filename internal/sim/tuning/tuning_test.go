package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFillsDefaults(t *testing.T) {
	tu, err := Parse([]byte("seed: 42\nspawn_chunk: [3, -2]\nstorage:\n  chunk_db: world.ldb\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tu.Seed != 42 || tu.Spawn != [2]int32{3, -2} {
		t.Fatalf("unexpected values: %+v", tu)
	}
	d := Defaults()
	if tu.InitialRadius != d.InitialRadius || tu.OutboxSize != d.OutboxSize {
		t.Fatalf("defaults not applied: %+v", tu)
	}
	if tu.Storage.ChunkDB != "world.ldb" || tu.Storage.IndexDB != d.Storage.IndexDB {
		t.Fatalf("storage not merged: %+v", tu.Storage)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := []string{
		"initial_radius: 500\n",
		"seed: \"abc\"\n",
		"spawn_chunk: [1]\n",
		"unknown_field: 1\n",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected schema error for %q", c)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	tu, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if tu != Defaults() {
		t.Fatalf("empty file should give defaults: %+v", tu)
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("seed: -7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.Seed != -7 {
		t.Fatalf("seed=%d", tu.Seed)
	}
}

func TestDigestTracksValues(t *testing.T) {
	a := Defaults()
	b := Defaults()
	if a.Digest() != b.Digest() {
		t.Fatalf("equal tunings digest differently")
	}
	b.Seed++
	if a.Digest() == b.Digest() {
		t.Fatalf("seed change not reflected in digest")
	}
}
