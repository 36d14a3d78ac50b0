package world

import (
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// Debug helpers read loop-owned state. Only call them from the loop goroutine
// or while Run is not active.

func (w *World) DebugBlock(x, y, z int) (block.Block, bool) { return w.store.GetBlock(x, y, z) }

func (w *World) DebugChunk(cx, cz int32) (*store.Chunk, bool) {
	c, ok := w.store.Chunk(cx, cz)
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

func (w *World) DebugLoaded() []store.ChunkPos { return w.store.LoadedKeys() }

func (w *World) DebugDirty() int { return len(w.dirty) }
