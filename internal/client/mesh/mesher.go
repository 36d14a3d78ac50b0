package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

var (
	ErrChunkMissing = errors.New("mesh: chunk not in snapshot")
	ErrBadSlice     = errors.New("mesh: slice out of range")
)

// Snapshot is a read-only view of loaded chunks keyed by XZ index.
type Snapshot map[uint64]*store.Chunk

type Key struct {
	X, Z  int32
	Slice uint32
}

func (k Key) String() string { return fmt.Sprintf("%d,%d/%d", k.X, k.Z, k.Slice) }

type Result struct {
	Key         Key
	Gen         uint64
	Solid       Geometry
	Transparent Geometry
	Quads       []Quad
	Err         error
}

const cacheSide = store.SliceSize + 2

// sky stands in for cells above the world so the top layer keeps its faces.
var sky = block.New(block.Air).WithLight(block.MaxLight)

// cell is one entry of the neighbourhood cache. ok is false when the owning
// chunk is not loaded or the position is below the world floor.
type cell struct {
	b  block.Block
	ok bool
}

type faceDef struct {
	face    block.Face
	step    [3]int
	corners [4][3]uint32
	indices [6]uint32
}

// faceDefs lists faces in neighbour order. Corners are offsets from the
// voxel origin; index order keeps outward faces counter-clockwise.
var faceDefs = [6]faceDef{
	{block.Front, [3]int{0, 0, 1}, [4][3]uint32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1}}, [6]uint32{0, 1, 2, 1, 3, 2}},
	{block.Back, [3]int{0, 0, -1}, [4][3]uint32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, [6]uint32{2, 1, 0, 2, 3, 1}},
	{block.Right, [3]int{1, 0, 0}, [4][3]uint32{{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1}}, [6]uint32{2, 1, 0, 2, 3, 1}},
	{block.Left, [3]int{-1, 0, 0}, [4][3]uint32{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1}}, [6]uint32{0, 1, 2, 1, 3, 2}},
	{block.Top, [3]int{0, 1, 0}, [4][3]uint32{{0, 1, 0}, {0, 1, 1}, {1, 1, 0}, {1, 1, 1}}, [6]uint32{0, 1, 2, 1, 3, 2}},
	{block.Bottom, [3]int{0, -1, 0}, [4][3]uint32{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}, {1, 0, 1}}, [6]uint32{2, 1, 0, 2, 3, 1}},
}

// MeshSlice builds solid and transparent geometry for one 16³ slice.
// Faces are emitted toward transparent neighbours only; a neighbour in a
// chunk missing from the snapshot produces no face.
func MeshSlice(key Key, snap Snapshot, atlas TextureAtlas) (Result, error) {
	res := Result{Key: key}
	if key.Slice >= store.SliceCount {
		return res, fmt.Errorf("%w: %d", ErrBadSlice, key.Slice)
	}
	ch, ok := snap[mathx.XZToIndex(key.X, key.Z)]
	if !ok || ch == nil {
		return res, fmt.Errorf("%w: %d,%d", ErrChunkMissing, key.X, key.Z)
	}
	if ch.FullAir[key.Slice] {
		return res, nil
	}

	cache := buildCache(key, snap)
	at := func(x, y, z int) cell {
		return cache[(z+1)*cacheSide*cacheSide+(y+1)*cacheSide+(x+1)]
	}

	baseX := float32(key.X) * store.SliceSize
	baseY := float32(key.Slice) * store.SliceSize
	baseZ := float32(key.Z) * store.SliceSize

	for x := 0; x < store.SliceSize; x++ {
		for z := 0; z < store.SliceSize; z++ {
			for y := 0; y < store.SliceSize; y++ {
				self := at(x, y, z).b
				if self.DoesNotRender() {
					continue
				}
				transparent := self.IsTransparent()
				for _, fd := range faceDefs {
					n := at(x+fd.step[0], y+fd.step[1], z+fd.step[2])
					if !n.ok {
						continue
					}
					if transparent {
						if n.b.Kind == self.Kind {
							continue
						}
					} else if !n.b.IsTransparent() {
						continue
					}

					tex := textureLayers(atlas, self, fd.face)
					illum := Illumination(n.b)
					var verts [4]SurfaceVertex
					for j, c := range fd.corners {
						pos := [3]uint32{uint32(x) + c[0], uint32(y) + c[1], uint32(z) + c[2]}
						verts[j] = PackVertex(pos, fd.face, uint32(j), tex, illum)
					}

					if !transparent {
						appendFace(&res.Solid, verts, fd.indices)
						continue
					}
					appendFace(&res.Transparent, verts, fd.indices)
					nrm := fd.face.Normal()
					res.Quads = append(res.Quads, Quad{
						Center: mgl32.Vec3{
							baseX + float32(x) + 0.5 + 0.5*float32(nrm[0]),
							baseY + float32(y) + 0.5 + 0.5*float32(nrm[1]),
							baseZ + float32(z) + 0.5 + 0.5*float32(nrm[2]),
						},
						Vertices: canonicalWinding(verts, fd.indices),
					})
				}
			}
		}
	}
	return res, nil
}

func appendFace(g *Geometry, verts [4]SurfaceVertex, idx [6]uint32) {
	base := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, verts[:]...)
	for _, i := range idx {
		g.Indices = append(g.Indices, base+i)
	}
	g.IndexCount = uint32(len(g.Indices))
}

func buildCache(key Key, snap Snapshot) []cell {
	cache := make([]cell, cacheSide*cacheSide*cacheSide)
	ox := int(key.X)*store.SliceSize - 1
	oz := int(key.Z)*store.SliceSize - 1
	oy := int(key.Slice)*store.SliceSize - 1
	for z := 0; z < cacheSide; z++ {
		for x := 0; x < cacheSide; x++ {
			cx, cz, lx, lz := store.ChunkOf(ox+x, oz+z)
			ch, ok := snap[mathx.XZToIndex(cx, cz)]
			if !ok || ch == nil {
				continue
			}
			for y := 0; y < cacheSide; y++ {
				wy := oy + y
				if wy < 0 {
					continue
				}
				if wy >= store.Height {
					cache[z*cacheSide*cacheSide+y*cacheSide+x] = cell{b: sky, ok: true}
					continue
				}
				cache[z*cacheSide*cacheSide+y*cacheSide+x] = cell{b: ch.Get(lx, wy, lz), ok: true}
			}
		}
	}
	return cache
}
