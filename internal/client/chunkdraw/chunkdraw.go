package chunkdraw

import (
	"voxelgrid.ai/internal/client/mesh"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

type SliceState uint8

const (
	PreMesh SliceState = iota // needs (re)meshing
	Mesh                      // a mesh job is in flight
	Ready                     // buffers uploaded
)

func (s SliceState) String() string {
	switch s {
	case PreMesh:
		return "PRE_MESH"
	case Mesh:
		return "MESH"
	case Ready:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// ChunkDraw is the client-side render state of one chunk column.
type ChunkDraw struct {
	Chunk       *store.Chunk
	Solid       [store.SliceCount]*Buffers
	Transparent [store.SliceCount]*Buffers
	Quads       [store.SliceCount][]mesh.Quad
	States      [store.SliceCount]SliceState

	// redo marks slices edited while their mesh job was in flight.
	redo [store.SliceCount]bool
	// job is the generation of the job in flight per slice; only its
	// result may be applied.
	job [store.SliceCount]uint64
}

func NewChunkDraw(c *store.Chunk) *ChunkDraw {
	return &ChunkDraw{Chunk: c}
}

func (d *ChunkDraw) releaseSlice(s int) {
	d.Solid[s].release()
	d.Transparent[s].release()
	d.Solid[s] = nil
	d.Transparent[s] = nil
}

func (d *ChunkDraw) releaseAll() {
	for s := range d.States {
		d.releaseSlice(s)
		d.Quads[s] = nil
	}
}
