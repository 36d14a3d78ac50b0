package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "voxelgrid.ai/internal/persistence/log"
	"voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/encoding"
	"voxelgrid.ai/internal/sim/world"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

func rollbackCmd(args []string) {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)
	wf := addWorldFlags(fs)
	snapPath := fs.String("snapshot", "latest", "snapshot to roll back, or \"latest\"")
	aabb := fs.String("aabb", "", "region x1,y1,z1:x2,y2,z2 (required)")
	since := fs.Uint64("since", 0, "first edit seq to undo")
	outPath := fs.String("out", "", "output path (default: <snapshots>/<seq>.rollback.snap.zst)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*aabb) == "" {
		fmt.Fprintln(os.Stderr, "missing -aabb")
		os.Exit(2)
	}
	min, max, err := parseAABB(*aabb)
	if err != nil {
		fail("aabb", err)
	}
	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	snapDir := env.path(env.tune.Storage.Snapshot)
	p := strings.TrimSpace(*snapPath)
	if p == "latest" {
		if p = latestSnapshot(snapDir); p == "" {
			fmt.Fprintln(os.Stderr, "no snapshot found")
			os.Exit(2)
		}
	}
	snap, err := snapshot.ReadSnapshot(p)
	if err != nil {
		fail("read snapshot", err)
	}

	edits, err := readEdits(env.path(env.tune.Storage.AuditDir), *since, snap.Header.Seq, min, max)
	if err != nil {
		fail("read edits", err)
	}
	st := store.NewChunkStore(env.generator())
	if err := encoding.ImportChunks(st, snap.Chunks); err != nil {
		fail("decode snapshot", err)
	}
	applied, skipped := applyRollback(st, edits)

	out := snap
	out.Chunks = encoding.ExportChunks(st)
	out.Header.Chunks = len(out.Chunks)
	if strings.TrimSpace(*outPath) == "" {
		*outPath = filepath.Join(snapDir, fmt.Sprintf("%d.rollback.snap.zst", snap.Header.Seq))
	}
	if err := snapshot.WriteSnapshot(*outPath, out); err != nil {
		fail("write snapshot", err)
	}
	fmt.Printf("rollback ok: snapshot=%s seq=%d aabb=%s since=%d edits=%d applied=%d skipped=%d out=%s\n",
		filepath.Base(p), snap.Header.Seq, *aabb, *since, len(edits), applied, skipped, *outPath)
}

// readEdits returns the audited edits with since <= seq <= to inside the
// box, newest first.
func readEdits(dir string, since, to uint64, min, max [3]int) ([]world.AuditEntry, error) {
	files, err := persistlog.EditFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []world.AuditEntry
	for _, f := range files {
		entries, err := persistlog.ReadEdits(f)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Seq < since || e.Seq > to || !withinAABB(e.Pos, min, max) {
				continue
			}
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, nil
}

// applyRollback restores each edit's previous block. Edits outside the
// loaded chunks or the column height are skipped.
func applyRollback(st *store.ChunkStore, edits []world.AuditEntry) (applied, skipped int) {
	for _, e := range edits {
		x, y, z := int(e.Pos[0]), int(e.Pos[1]), int(e.Pos[2])
		cx, cz, lx, lz := store.ChunkOf(x, z)
		c, ok := st.Chunk(cx, cz)
		if !ok || y < 0 || y >= store.Height {
			skipped++
			continue
		}
		c.Set(lx, y, lz, world.UnpackBlock(e.From).WithLight(0))
		applied++
	}
	return applied, skipped
}
