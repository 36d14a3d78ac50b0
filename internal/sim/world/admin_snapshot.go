package world

import (
	"context"
	"errors"
	"fmt"

	"voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/encoding"
)

type adminSnapshotReq struct {
	Resp chan snapshot.SnapshotV1
}

// RequestSnapshot asks the world loop goroutine for a copy of every loaded
// chunk. It is safe to call from other goroutines.
func (w *World) RequestSnapshot(ctx context.Context) (snapshot.SnapshotV1, error) {
	if w == nil || w.admin == nil {
		return snapshot.SnapshotV1{}, errors.New("admin snapshot not available")
	}
	resp := make(chan snapshot.SnapshotV1, 1)
	select {
	case w.admin <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}
	select {
	case snap := <-resp:
		return snap, nil
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}
}

func (w *World) handleAdminSnapshot(req adminSnapshotReq) {
	req.Resp <- w.ExportSnapshot()
}

// ExportSnapshot must run on the loop goroutine or before Run starts.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	sx, sz := w.SpawnChunk()
	return snapshot.SnapshotV1{
		Header:      w.snapshotHeader(),
		Seed:        w.cfg.Seed,
		BiomeDigest: w.cfg.BiomeDigest,
		SpawnX:      sx,
		SpawnZ:      sz,
		Chunks:      encoding.ExportChunks(w.store),
	}
}

// ImportSnapshot loads a snapshot before Run starts. Imported chunks are
// marked dirty so the next flush persists them.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) error {
	if snap.Seed != w.cfg.Seed {
		return fmt.Errorf("snapshot seed %d does not match world seed %d", snap.Seed, w.cfg.Seed)
	}
	if snap.BiomeDigest != "" && w.cfg.BiomeDigest != "" && snap.BiomeDigest != w.cfg.BiomeDigest {
		return fmt.Errorf("snapshot biome digest %s does not match %s", snap.BiomeDigest, w.cfg.BiomeDigest)
	}
	if err := encoding.ImportChunks(w.store, snap.Chunks); err != nil {
		return err
	}
	for _, ch := range snap.Chunks {
		if c, ok := w.store.Chunk(ch.X, ch.Z); ok {
			w.dirty[c.Index()] = struct{}{}
			w.recordChunk(c, SourceDB)
		}
	}
	w.seq = snap.Header.Seq
	w.nLoaded.Store(int64(len(w.store.Chunks)))
	return nil
}
