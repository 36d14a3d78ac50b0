package world

import (
	"time"

	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// editTarget validates a block position and reports its chunk. It sends the
// error to the client itself.
func (w *World) editTarget(c *clientConn, pos protocol.BlockPos) (x, y, z int, ok bool) {
	x, y, z = int(pos[0]), int(pos[1]), int(pos[2])
	cx, cz, _, _ := store.ChunkOf(x, z)
	if y < 0 || y >= store.Height || !mathx.InChunkRange(cx, cz) {
		w.sendError(c, protocol.ErrChunkOutOfRange, "block position out of range")
		return 0, 0, 0, false
	}
	if _, loaded := w.store.Chunk(cx, cz); !loaded {
		w.sendError(c, protocol.ErrNotLoaded, "chunk not loaded")
		return 0, 0, 0, false
	}
	return x, y, z, true
}

// handleBreak ignores unbreakable targets without replying.
func (w *World) handleBreak(c *clientConn, pos protocol.BlockPos) {
	x, y, z, ok := w.editTarget(c, pos)
	if !ok {
		return
	}
	if _, changed := w.store.BreakBlock(x, z, y); !changed {
		w.nRejected.Inc()
		return
	}
	w.commitEdits(c, ActionBreak)
}

func (w *World) handlePlace(c *clientConn, pos protocol.BlockPos, b block.Block) {
	x, y, z, ok := w.editTarget(c, pos)
	if !ok {
		return
	}
	if !w.store.PlaceBlock(x, z, y, b) {
		w.nRejected.Inc()
		w.sendError(c, protocol.ErrRejected, "target is not air")
		return
	}
	w.commitEdits(c, ActionPlace)
}

// commitEdits drains the edits the store reported during the last call:
// each one is audited, marks its chunk dirty and is broadcast.
func (w *World) commitEdits(c *clientConn, action string) {
	now := w.now().UTC().Format(time.RFC3339Nano)
	for _, e := range w.pendingEdits {
		w.seq++
		pos := [3]int32{int32(e.X), int32(e.Y), int32(e.Z)}
		if w.auditLogger != nil {
			err := w.auditLogger.WriteAudit(AuditEntry{
				Seq:    w.seq,
				Time:   now,
				Actor:  c.Name,
				Action: action,
				Pos:    pos,
				From:   PackBlock(e.Old),
				To:     PackBlock(e.New),
			})
			if err != nil {
				w.log.Printf("audit: %v", err)
			}
		}
		cx, cz, _, _ := store.ChunkOf(e.X, e.Z)
		w.dirty[mathx.XZToIndex(cx, cz)] = struct{}{}
		w.broadcast(protocol.BlockChanged{Pos: protocol.BlockPos(pos), Block: e.New})
		w.nEdits.Inc()
		w.sinceFlush++
	}
	w.pendingEdits = w.pendingEdits[:0]
	if w.sinceFlush >= w.cfg.FlushEveryEdits {
		w.flushDirty("edits")
	}
}
