package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelgrid.ai/internal/client/chunkdraw"
	"voxelgrid.ai/internal/client/config"
	"voxelgrid.ai/internal/client/game"
	"voxelgrid.ai/internal/client/mesh"
	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/world/terrain/store"
	"voxelgrid.ai/internal/transport/ws"
)

func main() {
	var (
		cfgPath    = flag.String("config", "client.toml", "client config (written with defaults when missing)")
		url        = flag.String("url", "", "server ws url (overrides config)")
		name       = flag.String("name", "", "player name (overrides config)")
		fps        = flag.Int("fps", 30, "frames per second")
		breakEvery = flag.Duration("break_every", 0, "break a random surface block this often (0 = never)")
		exitSettle = flag.Bool("exit_when_settled", false, "exit once the initial area is meshed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *url != "" {
		cfg.Connection.ServerURL = *url
	}
	if *name != "" {
		cfg.Connection.Name = *name
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	cl, err := ws.Dial(dialCtx, cfg.Connection.ServerURL, cfg.Connection.Name, logger)
	dialCancel()
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer cl.Close()
	logger.Printf("joined as %s spawn=%d,%d", cfg.Connection.Name, cl.SpawnX, cl.SpawnZ)

	alloc := &chunkdraw.HostAllocator{}
	g := game.New(game.Config{Pool: cfg.PoolConfig(), DrainPerFrame: cfg.Meshing.DrainPerFrame},
		alloc, mesh.NewStaticAtlas(mesh.DefaultTextureNames...), logger)
	defer g.Close()

	if err := cl.Send(protocol.RequestInitialChunks{}); err != nil {
		logger.Fatalf("request chunks: %v", err)
	}

	if *fps <= 0 {
		*fps = 30
	}
	frame := time.NewTicker(time.Second / time.Duration(*fps))
	defer frame.Stop()
	var breaks <-chan time.Time
	if *breakEvery > 0 {
		t := time.NewTicker(*breakEvery)
		defer t.Stop()
		breaks = t.C
	}

	camera := mgl32.Vec3{cfg.Camera.X, cfg.Camera.Y, cfg.Camera.Z}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	settled := false
	started := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cl.Done():
			logger.Printf("connection closed")
			return
		case <-breaks:
			if pos, ok := pickSurface(g.Draws(), cl.SpawnX, cl.SpawnZ, rng); ok {
				if err := cl.Send(protocol.BreakBlock{Pos: pos}); err != nil {
					logger.Printf("break: %v", err)
				}
			}
		case <-frame.C:
			for {
				msg, ok := cl.TryRecv()
				if !ok {
					break
				}
				g.Handle(msg)
			}
			g.Frame(camera)

			if done, n := g.InitialDone(); done && !settled && g.Settled() {
				settled = true
				st := g.Draws().Stats()
				logger.Printf("settled in %s: chunks=%d/%d meshed=%d failed=%d uploaded=%dB",
					time.Since(started).Round(time.Millisecond), g.Received(), n, st.Applied, st.Failed, alloc.UploadedBytes())
				if *exitSettle {
					return
				}
			}
		}
	}
}

// pickSurface chooses the top solid block of a random column in the spawn
// chunk, if that chunk has arrived.
func pickSurface(draws *chunkdraw.Manager, cx, cz int32, rng *rand.Rand) (protocol.BlockPos, bool) {
	d, ok := draws.Get(cx, cz)
	if !ok || d.Chunk == nil {
		return protocol.BlockPos{}, false
	}
	lx, lz := rng.Intn(store.SliceSize), rng.Intn(store.SliceSize)
	y := d.Chunk.SurfaceY(lx, lz)
	if y <= 0 {
		return protocol.BlockPos{}, false
	}
	return protocol.BlockPos{cx*store.SliceSize + int32(lx), int32(y), cz*store.SliceSize + int32(lz)}, true
}
