// Package game is the headless client loop: it turns server messages into
// chunk draws and drives the mesh pool once per frame.
package game

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"voxelgrid.ai/internal/client/chunkdraw"
	"voxelgrid.ai/internal/client/mesh"
	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/encoding"
)

type Game struct {
	log   *log.Logger
	draws *chunkdraw.Manager
	pool  *mesh.Pool

	drainPerFrame int

	initialDone  bool
	initialCount uint32
	received     int
	decodeFailed int
	serverErrors []protocol.ServerError
}

type Config struct {
	Pool          mesh.PoolConfig
	DrainPerFrame int
}

func New(cfg Config, alloc chunkdraw.BufferAllocator, atlas mesh.TextureAtlas, logger *log.Logger) *Game {
	if cfg.DrainPerFrame <= 0 {
		cfg.DrainPerFrame = chunkdraw.DefaultDrainPerFrame
	}
	return &Game{
		log:           logger,
		draws:         chunkdraw.NewManager(alloc, logger),
		pool:          mesh.NewPool(cfg.Pool, atlas),
		drainPerFrame: cfg.DrainPerFrame,
	}
}

// Handle applies one server message. Chunks that fail to decode are logged
// and dropped.
func (g *Game) Handle(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.ChunkProvided:
		c, err := encoding.DecodeWire(m.Data)
		if err != nil {
			g.decodeFailed++
			g.logf("drop chunk %d,%d: %v", m.X, m.Z, err)
			return
		}
		if c.X != m.X || c.Z != m.Z {
			g.decodeFailed++
			g.logf("drop chunk %d,%d: payload is %d,%d", m.X, m.Z, c.X, c.Z)
			return
		}
		g.draws.Insert(c)
		g.received++
	case protocol.ConcludeReceiveInitialChunks:
		g.initialDone = true
		g.initialCount = m.Count
	case protocol.BlockChanged:
		g.draws.MarkEdited(int(m.Pos[0]), int(m.Pos[1]), int(m.Pos[2]), m.Block)
	case protocol.ServerError:
		g.serverErrors = append(g.serverErrors, m)
		g.logf("server error %s: %s", m.Code, m.Message)
	}
}

// Frame schedules pending slices and applies finished meshes without
// blocking. It returns how many results were applied.
func (g *Game) Frame(camera mgl32.Vec3) int {
	g.draws.Schedule(g.pool)
	n := g.draws.Drain(g.pool.Results(), g.drainPerFrame)
	if n > 0 {
		g.draws.ResortTransparent(camera)
	}
	return n
}

// Settled reports whether every loaded slice is Ready and nothing is in flight.
func (g *Game) Settled() bool {
	return len(g.draws.Pending()) == 0 && g.pool.InFlight() == 0 && len(g.pool.Results()) == 0 && g.meshingDone()
}

func (g *Game) meshingDone() bool {
	for _, k := range g.draws.Keys() {
		d, _ := g.draws.Get(k.X, k.Z)
		for _, st := range d.States {
			if st != chunkdraw.Ready {
				return false
			}
		}
	}
	return true
}

func (g *Game) InitialDone() (bool, uint32)          { return g.initialDone, g.initialCount }
func (g *Game) Received() int                        { return g.received }
func (g *Game) DecodeFailed() int                    { return g.decodeFailed }
func (g *Game) ServerErrors() []protocol.ServerError { return g.serverErrors }
func (g *Game) Draws() *chunkdraw.Manager            { return g.draws }
func (g *Game) Pool() *mesh.Pool                     { return g.pool }

func (g *Game) Close() {
	g.pool.Close()
	g.draws.Close()
}

func (g *Game) logf(format string, args ...any) {
	if g.log != nil {
		g.log.Printf(format, args...)
	}
}
