package worldtest

import (
	"testing"

	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/encoding"
	world "voxelgrid.ai/internal/sim/world"
	"voxelgrid.ai/internal/sim/world/logic/mathx"
)

func TestInitialChunksNearestFirst(t *testing.T) {
	cfg := smallWorld()
	cfg.InitialRadius = 2
	cfg.MaxInitial = 9
	cfg.SpawnChunk = [2]int32{4, -3}
	h := NewHarness(t, cfg)
	h.Join("alice")
	h.Send("alice", protocol.RequestInitialChunks{})

	msgs := h.Drain("alice")
	chunks := ofType[protocol.ChunkProvided](msgs)
	if len(chunks) != 9 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	prev := -1
	for _, c := range chunks {
		d := mathx.AbsInt(int(c.X-4)) + mathx.AbsInt(int(c.Z+3))
		if d < prev {
			t.Fatalf("chunk %d,%d at distance %d after %d", c.X, c.Z, d, prev)
		}
		prev = d
		got, err := encoding.DecodeWire(c.Data)
		if err != nil {
			t.Fatalf("decode %d,%d: %v", c.X, c.Z, err)
		}
		if got.X != c.X || got.Z != c.Z {
			t.Fatalf("payload %d,%d under %d,%d", got.X, got.Z, c.X, c.Z)
		}
	}
	last, ok := msgs[len(msgs)-1].(protocol.ConcludeReceiveInitialChunks)
	if !ok || last.Count != 9 {
		t.Fatalf("last message %#v", msgs[len(msgs)-1])
	}
	if n := h.Index.Count(world.SourceGenerated); n != 9 {
		t.Fatalf("indexed %d generated chunks", n)
	}
}

func TestRequestChunkGeneratesOnDemand(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.Send("alice", protocol.RequestChunk{X: 100, Z: -100})
	chunks := ofType[protocol.ChunkProvided](h.Drain("alice"))
	if len(chunks) != 1 || chunks[0].X != 100 || chunks[0].Z != -100 {
		t.Fatalf("chunks=%+v", chunks)
	}
	// Same request again is served from memory, not regenerated.
	h.Send("alice", protocol.RequestChunk{X: 100, Z: -100})
	if n := h.Index.Count(world.SourceGenerated); n != 1 {
		t.Fatalf("generated %d times", n)
	}
}

func TestLoadingNeighbourKeepsSentChunk(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.Send("alice", protocol.RequestChunk{X: 7, Z: 7})
	first := ofType[protocol.ChunkProvided](h.Drain("alice"))
	h.Send("alice", protocol.RequestChunk{X: 8, Z: 7}, protocol.RequestChunk{X: 7, Z: 8})
	h.Drain("alice")
	h.Send("alice", protocol.RequestChunk{X: 7, Z: 7})
	again := ofType[protocol.ChunkProvided](h.Drain("alice"))
	if len(first) != 1 || len(again) != 1 {
		t.Fatalf("served %d then %d chunks", len(first), len(again))
	}
	if string(first[0].Data) != string(again[0].Data) {
		t.Fatalf("chunk 7,7 changed after its neighbours loaded")
	}
}

func TestRequestChunkOutOfRange(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.Send("alice", protocol.RequestChunk{X: 1 << 30, Z: 0})
	codes := errorCodes(h.Drain("alice"))
	if len(codes) != 1 || codes[0] != protocol.ErrChunkOutOfRange {
		t.Fatalf("codes=%v", codes)
	}
}

func TestLoadedBudget(t *testing.T) {
	cfg := smallWorld()
	cfg.MaxLoaded = 1
	h := NewHarness(t, cfg)
	h.Join("alice")
	h.Send("alice", protocol.RequestChunk{X: 0, Z: 0}, protocol.RequestChunk{X: 1, Z: 0})
	msgs := h.Drain("alice")
	if n := len(ofType[protocol.ChunkProvided](msgs)); n != 1 {
		t.Fatalf("served %d chunks", n)
	}
	if codes := errorCodes(msgs); len(codes) != 1 || codes[0] != protocol.ErrBusy {
		t.Fatalf("codes=%v", codes)
	}
}

func TestUnknownSessionDropped(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("alice")
	h.W.StepOnce(nil, nil, []world.RequestEnvelope{{Token: "nope", Msg: protocol.RequestInitialChunks{}}})
	if msgs := h.Drain("alice"); len(msgs) != 0 {
		t.Fatalf("alice got %d messages", len(msgs))
	}
	if h.W.Stats().Dropped != 1 {
		t.Fatalf("dropped=%d", h.W.Stats().Dropped)
	}
}

func TestJoinLeaveCounts(t *testing.T) {
	h := NewHarness(t, smallWorld())
	h.Join("a")
	h.Join("b")
	if h.W.Stats().Clients != 2 {
		t.Fatalf("clients=%d", h.W.Stats().Clients)
	}
	h.Leave("a")
	if h.W.Stats().Clients != 1 {
		t.Fatalf("clients=%d", h.W.Stats().Clients)
	}
}
