package encoding

import (
	"errors"
	"testing"

	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

func sampleChunk() *store.Chunk {
	c := store.NewChunk(-7, 12)
	for y := 0; y < 40; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				c.Set(x, y, z, block.New(block.Stone))
			}
		}
	}
	c.Set(3, 40, 3, block.New(block.Grass).WithOrientation(block.Left, 1).WithLight(4))
	c.Set(4, 40, 3, block.New(block.Grass).WithLight(4))
	c.Set(5, 41, 3, block.New(block.Air).WithLight(15))
	c.Set(15, 255, 15, block.New(block.Sand))
	return c
}

func assertSameChunk(t *testing.T, want, got *store.Chunk) {
	t.Helper()
	if want.X != got.X || want.Z != got.Z {
		t.Fatalf("position mismatch: %d,%d vs %d,%d", want.X, want.Z, got.X, got.Z)
	}
	for s := 0; s < store.SliceCount; s++ {
		if want.FullAir[s] != got.FullAir[s] {
			t.Fatalf("slice %d FullAir mismatch", s)
		}
		for i := range want.Slices[s] {
			if want.Slices[s][i] != got.Slices[s][i] {
				t.Fatalf("slice %d index %d: got %+v want %+v", s, i, got.Slices[s][i], want.Slices[s][i])
			}
		}
	}
}

func TestCompressRoundTrip(t *testing.T) {
	c := sampleChunk()
	got, err := Decompress(Compress(c))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	assertSameChunk(t, c, got)
}

func TestCompressGroupsByFullValue(t *testing.T) {
	cc := Compress(sampleChunk())
	g := cc.Slices[2]
	oriented := block.New(block.Grass).WithOrientation(block.Left, 1).WithLight(4)
	plain := block.New(block.Grass).WithLight(4)
	if len(g[oriented]) != 1 || len(g[plain]) != 1 {
		t.Fatalf("meta variants not kept apart: %v / %v", g[oriented], g[plain])
	}
	if got := len(cc.Slices[10][block.Block{}]); got != store.SliceVolume {
		t.Fatalf("empty slice lists %d air cells, want %d", got, store.SliceVolume)
	}
}

func TestCompressCoversEverySlice(t *testing.T) {
	c := store.NewChunk(0, 0)
	c.Set(1, 1, 1, block.New(block.Stone))
	for _, cc := range []CompressedChunk{Compress(c), Compress(sampleChunk())} {
		for s, groups := range cc.Slices {
			var seen [store.SliceVolume]bool
			total := 0
			for _, idx := range groups {
				for _, i := range idx {
					if seen[i] {
						t.Fatalf("slice %d: index %d listed twice", s, i)
					}
					seen[i] = true
					total++
				}
			}
			if total != store.SliceVolume {
				t.Fatalf("slice %d: %d of %d indices listed", s, total, store.SliceVolume)
			}
		}
	}
	one := Compress(c).Slices[0]
	if len(one) != 2 || len(one[block.New(block.Stone)]) != 1 || len(one[block.Block{}]) != store.SliceVolume-1 {
		t.Fatalf("unexpected groups for a single block: %d groups", len(one))
	}
}

func TestDecompressRejectsIncompleteCoverage(t *testing.T) {
	cc := Compress(store.NewChunk(0, 0))
	cc.Slices[3] = map[block.Block][]uint16{block.New(block.Dirt): {0, 1, 2}}
	if _, err := Decompress(cc); !errors.Is(err, ErrCoverage) {
		t.Fatalf("expected ErrCoverage for missing cells, got %v", err)
	}

	cc = Compress(store.NewChunk(0, 0))
	cc.Slices[3][block.New(block.Dirt)] = []uint16{7}
	if _, err := Decompress(cc); !errors.Is(err, ErrCoverage) {
		t.Fatalf("expected ErrCoverage for a duplicate, got %v", err)
	}
}

func TestDecompressRejectsBadIndex(t *testing.T) {
	var cc CompressedChunk
	cc.Slices[0] = map[block.Block][]uint16{block.New(block.Dirt): {4096}}
	if _, err := Decompress(cc); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("expected ErrBadIndex, got %v", err)
	}
}

func TestIndexRunsRoundTrip(t *testing.T) {
	in := []uint16{9, 0, 1, 2, 3, 7, 8, 4095}
	buf := EncodeIndexRuns(nil, in)
	out, n, err := DecodeIndexRuns(buf, store.SliceVolume)
	if err != nil {
		t.Fatalf("DecodeIndexRuns: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d bytes", n, len(buf))
	}
	want := []uint16{0, 1, 2, 3, 7, 8, 9, 4095}
	if len(out) != len(want) {
		t.Fatalf("got %v want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v want %v", out, want)
		}
	}
	if _, _, err := DecodeIndexRuns(buf, 100); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	c := sampleChunk()
	a := MarshalCompressed(Compress(c))
	b := MarshalCompressed(Compress(c.Clone()))
	if string(a) != string(b) {
		t.Fatalf("serialization not deterministic")
	}
	if _, err := UnmarshalCompressed(a[:len(a)/2]); err == nil {
		t.Fatalf("expected error for truncated input")
	}
	bad := append([]byte{99}, a[1:]...)
	if _, err := UnmarshalCompressed(bad); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}

func TestWireRoundTripGenerated(t *testing.T) {
	s := store.NewChunkStore(gen.New(gen.NewConfig(31, nil)))
	s.GenerateRangeInclusive(0, 0, 1, 0, nil)
	for _, c := range s.Chunks {
		data, err := EncodeWire(c)
		if err != nil {
			t.Fatalf("EncodeWire: %v", err)
		}
		got, err := DecodeWire(data)
		if err != nil {
			t.Fatalf("DecodeWire: %v", err)
		}
		assertSameChunk(t, c, got)
		if got.Digest() != c.Digest() {
			t.Fatalf("digest mismatch")
		}
	}
}

func TestDecodeWireGarbage(t *testing.T) {
	if _, err := DecodeWire([]byte("not deflate at all")); err == nil {
		t.Fatalf("expected error")
	}
}
