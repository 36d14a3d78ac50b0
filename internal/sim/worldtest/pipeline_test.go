package worldtest

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelgrid.ai/internal/client/chunkdraw"
	"voxelgrid.ai/internal/client/game"
	"voxelgrid.ai/internal/client/mesh"
	"voxelgrid.ai/internal/protocol"
)

// Server chunks flow through the wire codec into the client draw manager,
// get meshed on the pool and end up as uploaded buffers.
func TestServerToDrawablePipeline(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.Send("alice", protocol.RequestInitialChunks{})

	alloc := &chunkdraw.HostAllocator{}
	g := game.New(game.Config{Pool: mesh.PoolConfig{Workers: 4, QueueCap: 32}}, alloc, mesh.NewStaticAtlas(mesh.DefaultTextureNames...), nil)
	defer g.Close()
	for _, m := range h.Drain("alice") {
		g.Handle(m)
	}
	if done, n := g.InitialDone(); !done || n != 9 || g.Received() != 9 {
		t.Fatalf("done=%v n=%d received=%d", done, n, g.Received())
	}

	settle := func() {
		t.Helper()
		deadline := time.Now().Add(30 * time.Second)
		for !g.Settled() {
			if time.Now().After(deadline) {
				t.Fatalf("meshing did not settle")
			}
			g.Frame(mgl32.Vec3{8, 120, 8})
			time.Sleep(time.Millisecond)
		}
	}
	settle()
	if len(g.Draws().Drawable()) == 0 || alloc.Live() == 0 {
		t.Fatalf("drawable=%d live=%d", len(g.Draws().Drawable()), alloc.Live())
	}

	// An edit broadcast by the server re-meshes the affected slice.
	pos, _ := surfaceBlock(t, h.W, 6, 6)
	h.Send("alice", protocol.BreakBlock{Pos: pos})
	applied := g.Draws().Stats().Applied
	for _, m := range h.Drain("alice") {
		g.Handle(m)
	}
	settle()
	if g.Draws().Stats().Applied <= applied {
		t.Fatalf("edit did not trigger a re-mesh")
	}
	d, _ := g.Draws().Get(0, 0)
	if !d.Chunk.Get(int(pos[0]), int(pos[1]), int(pos[2])).IsAir() {
		t.Fatalf("client copy not updated")
	}
}
