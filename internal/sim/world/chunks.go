package world

import (
	"encoding/hex"

	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/encoding"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// ensureLoaded makes every position in ps resident, reading the chunk db
// before falling back to the generator. Positions beyond the MaxLoaded budget
// are skipped. New chunks are lit as one batch.
func (w *World) ensureLoaded(ps []store.ChunkPos) []store.ChunkPos {
	out := make([]store.ChunkPos, 0, len(ps))
	var fresh []*store.Chunk
	var missing []store.ChunkPos
	room := w.cfg.MaxLoaded - len(w.store.Chunks)
	for _, p := range ps {
		if _, ok := w.store.Chunk(p.X, p.Z); ok {
			out = append(out, p)
			continue
		}
		if room <= 0 {
			continue
		}
		room--
		out = append(out, p)
		if c, ok := w.loadStored(p); ok {
			w.store.Insert(c)
			w.recordChunk(c, SourceDB)
			fresh = append(fresh, c)
			continue
		}
		missing = append(missing, p)
	}
	fresh = append(fresh, w.store.GenerateMissing(missing, func(c *store.Chunk) {
		w.recordChunk(c, SourceGenerated)
	})...)
	if len(fresh) > 0 {
		w.store.LightChunks(fresh)
		w.nLoaded.Store(int64(len(w.store.Chunks)))
	}
	return out
}

// loadStored reads p from the chunk db. Unreadable or misplaced entries are
// logged and reported missing so the chunk is regenerated.
func (w *World) loadStored(p store.ChunkPos) (*store.Chunk, bool) {
	if w.chunkDB == nil {
		return nil, false
	}
	data, ok, err := w.chunkDB.Get(p.X, p.Z)
	switch {
	case err != nil:
		w.log.Printf("chunkdb get %d,%d: %v", p.X, p.Z, err)
	case ok:
		c, err := encoding.DecodeWire(data)
		if err != nil {
			w.log.Printf("chunkdb %d,%d corrupt, regenerating: %v", p.X, p.Z, err)
			break
		}
		if c.X != p.X || c.Z != p.Z {
			w.log.Printf("chunkdb %d,%d holds chunk %d,%d, regenerating", p.X, p.Z, c.X, c.Z)
			break
		}
		return c, true
	}
	return nil, false
}

func (w *World) recordChunk(c *store.Chunk, source string) {
	if w.indexer == nil {
		return
	}
	d := c.Digest()
	w.indexer.RecordChunk(ChunkRow{
		X:      c.X,
		Z:      c.Z,
		Index:  c.Index(),
		Digest: hex.EncodeToString(d[:]),
		NonAir: c.NonAirCount(),
		Source: source,
	})
}

func (w *World) sendChunk(c *clientConn, p store.ChunkPos) bool {
	ch, ok := w.store.Chunk(p.X, p.Z)
	if !ok {
		return false
	}
	data, err := encoding.EncodeWire(ch)
	if err != nil {
		w.log.Printf("encode chunk %d,%d: %v", p.X, p.Z, err)
		return false
	}
	return w.send(c, protocol.ChunkProvided{X: p.X, Z: p.Z, Data: data})
}

// handleInitialChunks streams the area around spawn nearest first, then
// tells the client how many chunks were sent.
func (w *World) handleInitialChunks(c *clientConn) {
	sx, sz := w.SpawnChunk()
	loaded := w.ensureLoaded(store.WantedAround(sx, sz, w.cfg.InitialRadius, w.cfg.MaxInitial))
	var n uint32
	for _, p := range loaded {
		if w.sendChunk(c, p) {
			n++
		}
	}
	w.send(c, protocol.ConcludeReceiveInitialChunks{Count: n})
	w.log.Printf("sent %d initial chunks to %s", n, c.Name)
}

func (w *World) handleRequestChunk(c *clientConn, x, z int32) {
	if !mathx.InChunkRange(x, z) {
		w.sendError(c, protocol.ErrChunkOutOfRange, "chunk position out of range")
		return
	}
	p := store.ChunkPos{X: x, Z: z}
	if len(w.ensureLoaded([]store.ChunkPos{p})) == 0 {
		w.sendError(c, protocol.ErrBusy, "loaded chunk budget exhausted")
		return
	}
	w.sendChunk(c, p)
}

// flushDirty writes every edited chunk to the chunk db. Chunks stay dirty
// when the write fails.
func (w *World) flushDirty(reason string) {
	if len(w.dirty) == 0 {
		return
	}
	entries := make(map[uint64][]byte, len(w.dirty))
	for idx := range w.dirty {
		c, ok := w.store.Chunks[idx]
		if !ok {
			delete(w.dirty, idx)
			continue
		}
		data, err := encoding.EncodeWire(c)
		if err != nil {
			w.log.Printf("flush: encode chunk %d,%d: %v", c.X, c.Z, err)
			continue
		}
		entries[idx] = data
	}
	if w.chunkDB != nil {
		if err := w.chunkDB.PutBatch(entries); err != nil {
			w.log.Printf("flush (%s): %v", reason, err)
			return
		}
	}
	for idx := range entries {
		w.recordChunk(w.store.Chunks[idx], SourceFlush)
		delete(w.dirty, idx)
	}
	w.sinceFlush = 0
	w.nFlushes.Inc()
	w.log.Printf("flushed %d chunks (%s)", len(entries), reason)
}
