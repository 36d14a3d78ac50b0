package worldtest

import (
	"io"
	"log"
	"sync"
	"testing"

	"voxelgrid.ai/internal/protocol"
	world "voxelgrid.ai/internal/sim/world"
)

// Harness drives a world synchronously through StepOnce, the same request
// path the websocket transport uses, and decodes what each session receives.
type Harness struct {
	T *testing.T
	W *world.World

	Audits  *AuditRecorder
	Index   *IndexRecorder
	Storage *MemStorage

	sessions map[string]*session
}

type session struct {
	Name  string
	Token string
	Out   chan []byte
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	return NewHarnessWithStorage(t, cfg, NewMemStorage())
}

// NewHarnessWithStorage reuses a chunk store, so a second harness sees what
// the first one flushed.
func NewHarnessWithStorage(t *testing.T, cfg world.WorldConfig, st *MemStorage) *Harness {
	t.Helper()
	w := world.New(cfg, log.New(io.Discard, "", 0))
	h := &Harness{
		T:        t,
		W:        w,
		Audits:   &AuditRecorder{},
		Index:    &IndexRecorder{},
		Storage:  st,
		sessions: map[string]*session{},
	}
	w.SetAuditLogger(h.Audits)
	w.SetChunkIndexer(h.Index)
	w.SetChunkStorage(st)
	return h
}

func (h *Harness) Join(name string) string {
	h.T.Helper()
	out := make(chan []byte, 4096)
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: name, Version: protocol.Version, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Token == "" {
		h.T.Fatalf("join %s refused: %s", name, jr.ErrCode)
	}
	h.sessions[name] = &session{Name: name, Token: jr.Token, Out: out}
	return jr.Token
}

func (h *Harness) Leave(name string) {
	h.T.Helper()
	s := h.session(name)
	h.W.StepOnce(nil, []string{s.Token}, nil)
	delete(h.sessions, name)
}

func (h *Harness) Send(name string, msgs ...protocol.Message) {
	h.T.Helper()
	s := h.session(name)
	reqs := make([]world.RequestEnvelope, 0, len(msgs))
	for _, m := range msgs {
		reqs = append(reqs, world.RequestEnvelope{Token: s.Token, Msg: m})
	}
	h.W.StepOnce(nil, nil, reqs)
}

// Drain decodes everything queued for a session so far.
func (h *Harness) Drain(name string) []protocol.Message {
	h.T.Helper()
	s := h.session(name)
	var out []protocol.Message
	for {
		select {
		case b := <-s.Out:
			p, err := protocol.Decode(b)
			if err != nil {
				h.T.Fatalf("server sent undecodable packet: %v", err)
			}
			out = append(out, p.Msg)
		default:
			return out
		}
	}
}

func (h *Harness) session(name string) *session {
	h.T.Helper()
	s := h.sessions[name]
	if s == nil {
		h.T.Fatalf("unknown session %q", name)
	}
	return s
}

type AuditRecorder struct {
	mu      sync.Mutex
	Entries []world.AuditEntry
}

func (r *AuditRecorder) WriteAudit(e world.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, e)
	return nil
}

type IndexRecorder struct {
	mu   sync.Mutex
	Rows []world.ChunkRow
}

func (r *IndexRecorder) RecordChunk(row world.ChunkRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rows = append(r.Rows, row)
}

func (r *IndexRecorder) Count(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.Rows {
		if row.Source == source {
			n++
		}
	}
	return n
}

// MemStorage is an in-memory chunk db keyed by XZ index.
type MemStorage struct {
	mu   sync.Mutex
	Data map[uint64][]byte
	Puts int
}

func NewMemStorage() *MemStorage { return &MemStorage{Data: map[uint64][]byte{}} }

func (m *MemStorage) Get(cx, cz int32) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Data[chunkIndex(cx, cz)]
	return b, ok, nil
}

func (m *MemStorage) PutBatch(entries map[uint64][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.Data[k] = append([]byte(nil), v...)
		m.Puts++
	}
	return nil
}
