package world

import (
	"time"

	"voxelgrid.ai/internal/sim/world/terrain/gen"
)

type WorldConfig struct {
	ID   string
	Seed int64

	Biomes      []gen.Biome
	BiomeDigest string

	SpawnChunk    [2]int32
	InitialRadius int
	MaxInitial    int
	MaxLoaded     int

	InboxSize int

	// Dirty chunks are written to the chunk db after this many edits or
	// this much time, whichever comes first.
	FlushEveryEdits int
	FlushEvery      time.Duration
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if len(c.Biomes) == 0 {
		c.Biomes = gen.DefaultBiomes()
	}
	if c.InitialRadius <= 0 {
		c.InitialRadius = 6
	}
	if c.MaxInitial <= 0 {
		c.MaxInitial = 256
	}
	if c.MaxLoaded <= 0 {
		c.MaxLoaded = 4096
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 1024
	}
	if c.FlushEveryEdits <= 0 {
		c.FlushEveryEdits = 64
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 10 * time.Second
	}
}
