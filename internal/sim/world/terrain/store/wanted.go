package store

import (
	"sort"

	"voxelgrid.ai/internal/sim/world/logic/mathx"
)

// WantedAround lists the chunks within a square radius of (cx, cz), nearest
// first by Manhattan distance, then by X and Z. At most max positions are
// returned.
func WantedAround(cx, cz int32, radius, max int) []ChunkPos {
	if radius < 0 {
		radius = 0
	}
	if max <= 0 {
		max = 1024
	}
	type item struct {
		p    ChunkPos
		dist int
	}
	items := make([]item, 0, (2*radius+1)*(2*radius+1))
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			p := ChunkPos{X: cx + int32(dx), Z: cz + int32(dz)}
			if !mathx.InChunkRange(p.X, p.Z) {
				continue
			}
			items = append(items, item{p: p, dist: mathx.AbsInt(dx) + mathx.AbsInt(dz)})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].dist != items[j].dist {
			return items[i].dist < items[j].dist
		}
		if items[i].p.X != items[j].p.X {
			return items[i].p.X < items[j].p.X
		}
		return items[i].p.Z < items[j].p.Z
	})
	if len(items) > max {
		items = items[:max]
	}
	out := make([]ChunkPos, 0, len(items))
	for _, it := range items {
		out = append(out, it.p)
	}
	return out
}
