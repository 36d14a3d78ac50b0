package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxelgrid.ai/internal/sim/world"
)

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	writeMetrics(&buf, "w1", world.Stats{Clients: 2, LoadedChunks: 81, Edits: 5}, 3, nil)
	out := buf.String()
	for _, want := range []string{
		`voxelgrid_world_clients{world="w1"} 2`,
		`voxelgrid_world_loaded_chunks{world="w1"} 81`,
		`voxelgrid_world_edits_total{world="w1"} 5`,
		`voxelgrid_ws_decode_errors_total{world="w1"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "voxelgrid_index_") {
		t.Fatalf("index metrics without an index")
	}
}

func TestLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3.snap.zst", "12.snap.zst", "bogus.snap.zst", "40.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := latestSnapshot(dir); filepath.Base(got) != "12.snap.zst" {
		t.Fatalf("latest=%s", got)
	}
	if got := latestSnapshot(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("missing dir gave %s", got)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	if !isLoopbackRemote("127.0.0.1:5000") || !isLoopbackRemote("[::1]:80") {
		t.Fatalf("loopback not recognised")
	}
	if isLoopbackRemote("10.0.0.2:80") {
		t.Fatalf("remote treated as loopback")
	}
}
