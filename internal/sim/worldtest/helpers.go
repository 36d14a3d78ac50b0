package worldtest

import "voxelgrid.ai/internal/sim/world/logic/mathx"

func chunkIndex(cx, cz int32) uint64 { return mathx.XZToIndex(cx, cz) }
