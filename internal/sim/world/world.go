package world

import (
	"log"
	"time"

	"go.uber.org/atomic"

	"voxelgrid.ai/internal/persistence/snapshot"
	"voxelgrid.ai/internal/sim/world/terrain/gen"
	"voxelgrid.ai/internal/sim/world/terrain/store"
)

type clientConn struct {
	Token string
	Name  string
	Out   chan []byte
}

// World owns the chunk store. All mutation happens on the Run goroutine;
// other goroutines talk to it through the request channels.
type World struct {
	cfg   WorldConfig
	log   *log.Logger
	gen   *gen.Generator
	store *store.ChunkStore

	clients map[string]*clientConn

	join  chan JoinRequest
	leave chan string
	inbox chan RequestEnvelope
	admin chan adminSnapshotReq
	stop  chan struct{}

	auditLogger AuditLogger
	indexer     ChunkIndexer
	chunkDB     ChunkStorage

	pendingEdits []store.Edit
	dirty        map[uint64]struct{}
	sinceFlush   int
	seq          uint64
	now          func() time.Time

	nClients  atomic.Int64
	nLoaded   atomic.Int64
	nEdits    atomic.Int64
	nRejected atomic.Int64
	nDropped  atomic.Int64
	nFlushes  atomic.Int64
}

func New(cfg WorldConfig, logger *log.Logger) *World {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(log.Writer(), "[world] ", log.LstdFlags|log.Lmicroseconds)
	}
	g := gen.New(gen.NewConfig(cfg.Seed, cfg.Biomes))
	w := &World{
		cfg:     cfg,
		log:     logger,
		gen:     g,
		store:   store.NewChunkStore(g),
		clients: map[string]*clientConn{},
		join:    make(chan JoinRequest, 64),
		leave:   make(chan string, 64),
		inbox:   make(chan RequestEnvelope, cfg.InboxSize),
		admin:   make(chan adminSnapshotReq, 8),
		stop:    make(chan struct{}),
		dirty:   map[uint64]struct{}{},
		now:     time.Now,
	}
	w.store.OnEdit = func(e store.Edit) { w.pendingEdits = append(w.pendingEdits, e) }
	return w
}

func (w *World) SetAuditLogger(l AuditLogger)   { w.auditLogger = l }
func (w *World) SetChunkIndexer(i ChunkIndexer) { w.indexer = i }
func (w *World) SetChunkStorage(s ChunkStorage) { w.chunkDB = s }

func (w *World) Join() chan<- JoinRequest        { return w.join }
func (w *World) Leave() chan<- string            { return w.leave }
func (w *World) Inbox() chan<- RequestEnvelope   { return w.inbox }
func (w *World) Config() WorldConfig             { return w.cfg }
func (w *World) Generator() *gen.Generator       { return w.gen }
func (w *World) SpawnChunk() (cx, cz int32)      { return w.cfg.SpawnChunk[0], w.cfg.SpawnChunk[1] }
func (w *World) snapshotHeader() snapshot.Header { return snapshot.Header{WorldID: w.cfg.ID, Seq: w.seq} }

func (w *World) Stats() Stats {
	return Stats{
		Clients:      w.nClients.Load(),
		LoadedChunks: w.nLoaded.Load(),
		Edits:        w.nEdits.Load(),
		Rejected:     w.nRejected.Load(),
		Dropped:      w.nDropped.Load(),
		Flushes:      w.nFlushes.Load(),
	}
}
