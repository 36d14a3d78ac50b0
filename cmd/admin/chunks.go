package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxelgrid.ai/internal/persistence/chunkdb"
	"voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/catalogs"
	"voxelgrid.ai/internal/sim/encoding"
	"voxelgrid.ai/internal/sim/tuning"
	"voxelgrid.ai/internal/sim/world/block"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

type worldFlags struct {
	dataDir    *string
	worldID    *string
	configDir  *string
	tuningPath *string
}

func addWorldFlags(fs *flag.FlagSet) worldFlags {
	return worldFlags{
		dataDir:    fs.String("data", "./data", "runtime data directory"),
		worldID:    fs.String("world", "world_1", "world id"),
		configDir:  fs.String("configs", "./configs", "config directory"),
		tuningPath: fs.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)"),
	}
}

type worldEnv struct {
	id   string
	dir  string
	tune tuning.Tuning
	cats *catalogs.Catalogs
}

func (wf worldFlags) load() (worldEnv, error) {
	cats, err := catalogs.Load(*wf.configDir)
	if err != nil {
		return worldEnv{}, fmt.Errorf("load catalogs: %w", err)
	}
	tp := strings.TrimSpace(*wf.tuningPath)
	if tp == "" {
		tp = filepath.Join(*wf.configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			return worldEnv{}, fmt.Errorf("load tuning: %w", err)
		}
		tune = tuning.Defaults()
	}
	return worldEnv{id: *wf.worldID, dir: worldDir(*wf.dataDir, *wf.worldID), tune: tune, cats: cats}, nil
}

func (e worldEnv) path(name string) string { return filepath.Join(e.dir, name) }

func (e worldEnv) generator() *gen.Generator {
	return gen.New(gen.NewConfig(e.tune.Seed, e.cats.Biomes.Biomes))
}

// loadAll decodes every stored chunk into a fresh store.
func loadAll(db *chunkdb.DB, st *store.ChunkStore) error {
	return db.ForEach(func(index uint64, data []byte) error {
		c, err := encoding.DecodeWire(data)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", index, err)
		}
		st.Insert(c)
		return nil
	})
}

func (e worldEnv) snapshotOf(st *store.ChunkStore, seq uint64) snapshot.SnapshotV1 {
	chunks := encoding.ExportChunks(st)
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: e.id,
			Seq:     seq,
			Chunks:  len(chunks),
		},
		Seed:        e.tune.Seed,
		BiomeDigest: e.cats.Biomes.Digest,
		SpawnX:      e.tune.Spawn[0],
		SpawnZ:      e.tune.Spawn[1],
		Chunks:      chunks,
	}
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	wf := addWorldFlags(fs)
	seq := fs.Uint64("seq", 0, "edit sequence recorded in the snapshot header")
	outPath := fs.String("out", "", "output path (default: <world>/<snapshots>/<seq>.snap.zst)")
	_ = fs.Parse(args)

	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	db, err := chunkdb.Open(env.path(env.tune.Storage.ChunkDB))
	if err != nil {
		fail("open chunk db", err)
	}
	defer db.Close()

	st := store.NewChunkStore(env.generator())
	if err := loadAll(db, st); err != nil {
		fail("read chunk db", err)
	}
	snap := env.snapshotOf(st, *seq)

	out := strings.TrimSpace(*outPath)
	if out == "" {
		out = filepath.Join(env.path(env.tune.Storage.Snapshot), fmt.Sprintf("%d.snap.zst", *seq))
	}
	if err := snapshot.WriteSnapshot(out, snap); err != nil {
		fail("write snapshot", err)
	}
	fmt.Printf("export ok: chunks=%d out=%s\n", len(snap.Chunks), out)
}

func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	wf := addWorldFlags(fs)
	snapPath := fs.String("snapshot", "latest", "snapshot path, or \"latest\"")
	_ = fs.Parse(args)

	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	p := strings.TrimSpace(*snapPath)
	if p == "latest" {
		p = latestSnapshot(env.path(env.tune.Storage.Snapshot))
		if p == "" {
			fmt.Fprintln(os.Stderr, "no snapshot found")
			os.Exit(2)
		}
	}
	snap, err := snapshot.ReadSnapshot(p)
	if err != nil {
		fail("read snapshot", err)
	}
	if snap.Seed != env.tune.Seed {
		fail("import", fmt.Errorf("snapshot seed %d does not match world seed %d", snap.Seed, env.tune.Seed))
	}

	st := store.NewChunkStore(env.generator())
	if err := encoding.ImportChunks(st, snap.Chunks); err != nil {
		fail("decode snapshot", err)
	}
	entries := make(map[uint64][]byte, len(st.Chunks))
	for k, c := range st.Chunks {
		data, err := encoding.EncodeWire(c)
		if err != nil {
			fail("encode chunk", err)
		}
		entries[k] = data
	}

	db, err := chunkdb.Open(env.path(env.tune.Storage.ChunkDB))
	if err != nil {
		fail("open chunk db", err)
	}
	defer db.Close()
	if err := db.PutBatch(entries); err != nil {
		fail("write chunk db", err)
	}
	fmt.Printf("import ok: snapshot=%s chunks=%d\n", filepath.Base(p), len(entries))
}

func surfaceCmd(args []string) {
	fs := flag.NewFlagSet("surface", flag.ExitOnError)
	wf := addWorldFlags(fs)
	chunk := fs.String("chunk", "0,0", "chunk coordinates cx,cz")
	decode := fs.String("decode", "", "print a previously dumped surface string as a grid instead")
	_ = fs.Parse(args)

	if *decode != "" {
		rows, err := surfaceGrid(*decode)
		if err != nil {
			fail("decode surface", err)
		}
		printJSON(map[string]any{"grid": rows})
		return
	}

	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	xz, err := parseInts(*chunk, 2)
	if err != nil {
		fail("chunk", err)
	}
	cx, cz := int32(xz[0]), int32(xz[1])

	source := "gen"
	var c *store.Chunk
	if db, err := chunkdb.Open(env.path(env.tune.Storage.ChunkDB)); err == nil {
		data, ok, err := db.Get(cx, cz)
		_ = db.Close()
		if err != nil {
			fail("read chunk db", err)
		}
		if ok {
			if c, err = encoding.DecodeWire(data); err != nil {
				fail("decode chunk", err)
			}
			source = "db"
		}
	}
	if c == nil {
		c = store.Generate(env.generator(), cx, cz)
	}
	printJSON(map[string]any{
		"x":       cx,
		"z":       cz,
		"source":  source,
		"non_air": c.NonAirCount(),
		"surface": encoding.EncodeRLE(encoding.SurfaceIDs(c)),
	})
}

// surfaceGrid renders a surface dump as one string per z row, one letter per
// column: '.' for no surface, '?' for an unknown kind.
func surfaceGrid(rle string) ([]string, error) {
	const n = store.SliceSize * store.SliceSize
	ids, err := encoding.DecodeRLE(rle, n)
	if err != nil {
		return nil, err
	}
	if len(ids) != n {
		return nil, fmt.Errorf("surface has %d columns, want %d", len(ids), n)
	}
	rows := make([]string, 0, store.SliceSize)
	var sb strings.Builder
	for z := 0; z < store.SliceSize; z++ {
		sb.Reset()
		for _, id := range ids[z*store.SliceSize : (z+1)*store.SliceSize] {
			k := block.Kind(id)
			switch {
			case id > 0xff || !k.Valid():
				sb.WriteByte('?')
			case k == block.Air:
				sb.WriteByte('.')
			default:
				sb.WriteByte(k.String()[0])
			}
		}
		rows = append(rows, sb.String())
	}
	return rows, nil
}
