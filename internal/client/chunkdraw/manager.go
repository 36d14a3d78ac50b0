package chunkdraw

import (
	"fmt"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelgrid.ai/internal/client/mesh"
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

// DefaultDrainPerFrame caps how many mesh results one frame applies.
const DefaultDrainPerFrame = 16

// Submitter accepts mesh jobs without blocking. mesh.Pool implements it.
type Submitter interface {
	Submit(job mesh.Job) bool
}

type Stats struct {
	Submitted int
	Applied   int
	Stale     int // results for unloaded chunks or slices not in flight
	Failed    int
}

// Manager owns every ChunkDraw on the render goroutine. It is not safe for
// concurrent use.
type Manager struct {
	draws  map[uint64]*ChunkDraw
	alloc  BufferAllocator
	log    *log.Logger
	camera mgl32.Vec3

	// snap holds one frozen clone per loaded chunk. Once handed to a job it
	// is never written; changes go into a shallow copy.
	snap   mesh.Snapshot
	shared bool
	stale  map[uint64]struct{}
	gen    uint64

	stats Stats
}

func NewManager(alloc BufferAllocator, logger *log.Logger) *Manager {
	return &Manager{
		draws: map[uint64]*ChunkDraw{},
		snap:  mesh.Snapshot{},
		stale: map[uint64]struct{}{},
		alloc: alloc,
		log:   logger,
	}
}

func (m *Manager) logf(format string, args ...any) {
	if m.log != nil {
		m.log.Printf(format, args...)
	}
}

func (m *Manager) Stats() Stats { return m.stats }

func (m *Manager) Len() int { return len(m.draws) }

// Keys lists loaded chunk positions ordered by X then Z.
func (m *Manager) Keys() []store.ChunkPos {
	out := make([]store.ChunkPos, 0, len(m.draws))
	for _, d := range m.draws {
		out = append(out, store.ChunkPos{X: d.Chunk.X, Z: d.Chunk.Z})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

func (m *Manager) Get(x, z int32) (*ChunkDraw, bool) {
	d, ok := m.draws[mathx.XZToIndex(x, z)]
	return d, ok
}

// Insert adds a received chunk with every slice pending. A chunk already
// present is replaced and its buffers released. Loaded neighbours are
// re-meshed since their border faces depend on this chunk.
func (m *Manager) Insert(c *store.Chunk) {
	k := c.Index()
	if old, ok := m.draws[k]; ok {
		old.releaseAll()
	}
	m.draws[k] = NewChunkDraw(c)
	m.stale[k] = struct{}{}
	for _, d := range [][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if n, ok := m.Get(c.X+d[0], c.Z+d[1]); ok {
			for s := range n.States {
				m.dirty(n, s)
			}
		}
	}
}

func (m *Manager) Unload(x, z int32) bool {
	k := mathx.XZToIndex(x, z)
	d, ok := m.draws[k]
	if !ok {
		return false
	}
	d.releaseAll()
	delete(m.draws, k)
	delete(m.stale, k)
	if _, ok := m.snap[k]; ok {
		delete(m.writableSnap(), k)
	}
	return true
}

func (m *Manager) dirty(d *ChunkDraw, s int) {
	switch d.States[s] {
	case Mesh:
		d.redo[s] = true
	default:
		d.States[s] = PreMesh
	}
}

// MarkDirty schedules a slice for re-meshing.
func (m *Manager) MarkDirty(x, z int32, slice int) {
	if slice < 0 || slice >= store.SliceCount {
		return
	}
	if d, ok := m.Get(x, z); ok {
		m.dirty(d, slice)
	}
}

// MarkEdited applies a block change at an absolute position and dirties
// the owning slice plus any slice whose border faces touch the block.
func (m *Manager) MarkEdited(x, y, z int, b block.Block) bool {
	if y < 0 || y >= store.Height {
		return false
	}
	cx, cz, lx, lz := store.ChunkOf(x, z)
	d, ok := m.Get(cx, cz)
	if !ok {
		return false
	}
	d.Chunk.Set(lx, y, lz, b)
	m.stale[d.Chunk.Index()] = struct{}{}

	s := y / store.SliceSize
	m.MarkDirty(cx, cz, s)
	if ly := y % store.SliceSize; ly == 0 {
		m.MarkDirty(cx, cz, s-1)
	} else if ly == store.SliceSize-1 {
		m.MarkDirty(cx, cz, s+1)
	}
	switch lx {
	case 0:
		m.MarkDirty(cx-1, cz, s)
	case store.SliceSize - 1:
		m.MarkDirty(cx+1, cz, s)
	}
	switch lz {
	case 0:
		m.MarkDirty(cx, cz-1, s)
	case store.SliceSize - 1:
		m.MarkDirty(cx, cz+1, s)
	}
	return true
}

// Snapshot returns a read-only view of the loaded chunks for mesh jobs.
// Only chunks inserted or edited since the last call are cloned again; the
// rest are shared with earlier snapshots.
func (m *Manager) Snapshot() mesh.Snapshot {
	if len(m.stale) > 0 {
		snap := m.writableSnap()
		for k := range m.stale {
			if d, ok := m.draws[k]; ok {
				snap[k] = d.Chunk.Clone()
			}
		}
		clear(m.stale)
	}
	m.shared = true
	return m.snap
}

func (m *Manager) writableSnap() mesh.Snapshot {
	if m.shared {
		next := make(mesh.Snapshot, len(m.snap)+1)
		for k, c := range m.snap {
			next[k] = c
		}
		m.snap = next
		m.shared = false
	}
	return m.snap
}

// Pending lists slices waiting to be meshed, in a stable order.
func (m *Manager) Pending() []mesh.Key {
	var out []mesh.Key
	for _, d := range m.draws {
		for s, st := range d.States {
			if st == PreMesh {
				out = append(out, mesh.Key{X: d.Chunk.X, Z: d.Chunk.Z, Slice: uint32(s)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].Slice < out[j].Slice
	})
	return out
}

// Schedule submits pending slices until the submitter refuses one. Refused
// slices stay PreMesh and are retried on the next call.
func (m *Manager) Schedule(pool Submitter) int {
	pending := m.Pending()
	if len(pending) == 0 {
		return 0
	}
	snap := m.Snapshot()
	n := 0
	for _, k := range pending {
		m.gen++
		if !pool.Submit(mesh.Job{Key: k, Gen: m.gen, Snapshot: snap}) {
			break
		}
		d, _ := m.Get(k.X, k.Z)
		d.States[k.Slice] = Mesh
		d.redo[k.Slice] = false
		d.job[k.Slice] = m.gen
		n++
	}
	m.stats.Submitted += n
	return n
}

// Apply uploads one mesh result. Results for unloaded chunks, for slices
// that are not in flight, or from any job but the one in flight are dropped
// and reported false.
func (m *Manager) Apply(res mesh.Result) bool {
	d, ok := m.Get(res.Key.X, res.Key.Z)
	if !ok || res.Key.Slice >= store.SliceCount || d.States[res.Key.Slice] != Mesh || d.job[res.Key.Slice] != res.Gen {
		m.stats.Stale++
		return false
	}
	s := int(res.Key.Slice)
	if res.Err != nil {
		m.logf("mesh %s failed: %v", res.Key, res.Err)
		m.stats.Failed++
		d.States[s] = PreMesh
		return false
	}

	solid, err := m.upload(res.Solid)
	if err != nil {
		m.logf("upload %s solid: %v", res.Key, err)
		m.stats.Failed++
		d.States[s] = PreMesh
		return false
	}
	quads := res.Quads
	mesh.SortQuads(quads, m.camera)
	transparent, err := m.upload(mesh.QuadGeometry(quads))
	if err != nil {
		solid.release()
		m.logf("upload %s transparent: %v", res.Key, err)
		m.stats.Failed++
		d.States[s] = PreMesh
		return false
	}

	d.releaseSlice(s)
	d.Solid[s] = solid
	d.Transparent[s] = transparent
	d.Quads[s] = quads
	d.States[s] = Ready
	if d.redo[s] {
		d.redo[s] = false
		d.States[s] = PreMesh
	}
	m.stats.Applied++
	return true
}

func (m *Manager) upload(g mesh.Geometry) (*Buffers, error) {
	if g.Empty() {
		return nil, nil
	}
	vb, err := m.alloc.CreateVertexBuffer(g.VertexBytes())
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	ib, err := m.alloc.CreateIndexBuffer(g.IndexBytes())
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	return &Buffers{Vertex: vb, Index: ib, IndexCount: g.IndexCount}, nil
}

// Drain applies at most max results without blocking. max <= 0 means
// DefaultDrainPerFrame.
func (m *Manager) Drain(results <-chan mesh.Result, max int) int {
	if max <= 0 {
		max = DefaultDrainPerFrame
	}
	n := 0
	for n < max {
		select {
		case res, ok := <-results:
			if !ok {
				return n
			}
			m.Apply(res)
			n++
		default:
			return n
		}
	}
	return n
}

// ResortTransparent re-sorts transparent quads of ready slices against the
// camera and re-uploads their buffers.
func (m *Manager) ResortTransparent(camera mgl32.Vec3) {
	m.camera = camera
	for _, d := range m.draws {
		for s := range d.States {
			if d.States[s] != Ready || len(d.Quads[s]) == 0 {
				continue
			}
			mesh.SortQuads(d.Quads[s], camera)
			b, err := m.upload(mesh.QuadGeometry(d.Quads[s]))
			if err != nil {
				m.logf("resort %d,%d/%d: %v", d.Chunk.X, d.Chunk.Z, s, err)
				continue
			}
			d.Transparent[s].release()
			d.Transparent[s] = b
		}
	}
}

// DrawSlice is one ready slice handed to the renderer.
type DrawSlice struct {
	Key         mesh.Key
	Solid       *Buffers
	Transparent *Buffers
}

// Drawable lists ready slices with geometry, ordered like Pending.
func (m *Manager) Drawable() []DrawSlice {
	var out []DrawSlice
	for _, d := range m.draws {
		for s, st := range d.States {
			if st != Ready || (d.Solid[s] == nil && d.Transparent[s] == nil) {
				continue
			}
			out = append(out, DrawSlice{
				Key:         mesh.Key{X: d.Chunk.X, Z: d.Chunk.Z, Slice: uint32(s)},
				Solid:       d.Solid[s],
				Transparent: d.Transparent[s],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Slice < b.Slice
	})
	return out
}

// Close releases every buffer.
func (m *Manager) Close() {
	for k, d := range m.draws {
		d.releaseAll()
		delete(m.draws, k)
	}
	m.snap = mesh.Snapshot{}
	m.shared = false
	clear(m.stale)
}
