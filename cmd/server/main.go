package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelgrid.ai/internal/persistence/chunkdb"
	"voxelgrid.ai/internal/persistence/indexdb"
	persistlog "voxelgrid.ai/internal/persistence/log"
	"voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/catalogs"
	"voxelgrid.ai/internal/sim/tuning"
	"voxelgrid.ai/internal/sim/world"
	"voxelgrid.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed (overrides tuning when non-zero)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index")
		snapPath   = flag.String("snapshot", "", "snapshot to import before serving; \"latest\" picks the newest in the data dir")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	w := world.New(world.WorldConfig{
		ID:              *worldID,
		Seed:            tune.Seed,
		Biomes:          cats.Biomes.Biomes,
		BiomeDigest:     cats.Biomes.Digest,
		SpawnChunk:      tune.Spawn,
		InitialRadius:   tune.InitialRadius,
		MaxInitial:      tune.MaxInitial,
		MaxLoaded:       tune.MaxLoaded,
		InboxSize:       tune.InboxSize,
		FlushEveryEdits: tune.FlushEveryEdits,
		FlushEvery:      time.Duration(tune.FlushEverySecs) * time.Second,
	}, logger)

	cdb, err := chunkdb.Open(filepath.Join(worldDir, tune.Storage.ChunkDB))
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer cdb.Close()
	w.SetChunkStorage(cdb)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, tune.Storage.IndexDB))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		w.SetChunkIndexer(idx)
	}

	editLog := persistlog.NewEditLogger(filepath.Join(worldDir, tune.Storage.AuditDir))
	defer editLog.Close()
	if idx != nil {
		w.SetAuditLogger(world.AuditLoggers{editLog, idx})
	} else {
		w.SetAuditLogger(editLog)
	}

	snapDir := filepath.Join(worldDir, tune.Storage.Snapshot)
	p := strings.TrimSpace(*snapPath)
	if p == "latest" {
		p = latestSnapshot(snapDir)
		if p == "" {
			logger.Printf("no snapshot in %s; starting from the chunk db", snapDir)
		}
	}
	if p != "" {
		snap, err := snapshot.ReadSnapshot(p)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("imported %d chunks from %s", len(snap.Chunks), filepath.Base(p))
	}

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger, tune.OutboxSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, *worldID, w.Stats(), wsSrv.DecodeErrors(), idx)
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			WorldID string      `json:"world_id"`
			Seed    int64       `json:"seed"`
			Stats   world.Stats `json:"stats"`
		}{*worldID, tune.Seed, w.Stats()})
	})
	mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel2()
		path, err := saveSnapshot(ctx2, w, snapDir)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "path": path})
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (seed=%d spawn=%v)", *addr, tune.Seed, tune.Spawn)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	cancel()
	<-worldDone
}

// saveSnapshot asks the world loop for its chunks and writes them as
// <dir>/<seq>.snap.zst.
func saveSnapshot(ctx context.Context, w *world.World, dir string) (string, error) {
	snap, err := w.RequestSnapshot(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.snap.zst", snap.Header.Seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	return path, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// latestSnapshot picks the highest-numbered snapshot in dir.
func latestSnapshot(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestSeq uint64
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || seq > bestSeq {
			bestSeq = seq
			best = filepath.Join(dir, name)
		}
	}
	return best
}
