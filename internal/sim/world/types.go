package world

import (
	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/world/block"
)

// AuditEntry records one accepted block edit.
type AuditEntry struct {
	Seq    uint64   `json:"seq"`
	Time   string   `json:"time"`
	Actor  string   `json:"actor"`
	Action string   `json:"action"`
	Pos    [3]int32 `json:"pos"`
	From   uint16   `json:"from"`
	To     uint16   `json:"to"`
}

const (
	ActionBreak = "BREAK"
	ActionPlace = "PLACE"
)

// PackBlock folds kind and meta into the integer stored in audits.
func PackBlock(b block.Block) uint16 { return uint16(b.Kind) | uint16(b.Meta)<<8 }

func UnpackBlock(v uint16) block.Block {
	return block.Block{Kind: block.Kind(v & 0xff), Meta: uint8(v >> 8)}
}

// ChunkRow describes a chunk as it was loaded or flushed.
type ChunkRow struct {
	X, Z   int32
	Index  uint64
	Digest string
	NonAir int
	Source string
}

const (
	SourceGenerated = "gen"
	SourceDB        = "db"
	SourceFlush     = "flush"
)

type AuditLogger interface {
	WriteAudit(AuditEntry) error
}

type ChunkIndexer interface {
	RecordChunk(ChunkRow)
}

// ChunkStorage is the persistent chunk store. Values are wire-encoded chunks.
type ChunkStorage interface {
	Get(cx, cz int32) ([]byte, bool, error)
	PutBatch(entries map[uint64][]byte) error
}

type JoinRequest struct {
	Name    string
	Version uint32
	Out     chan []byte
	Resp    chan JoinResponse
}

type JoinResponse struct {
	Token  string
	SpawnX int32
	SpawnZ int32
	// ErrCode is a protocol error code when the join was refused.
	ErrCode string
}

// RequestEnvelope is one decoded client packet forwarded by the transport.
type RequestEnvelope struct {
	Token string
	Msg   protocol.Message
}

type Stats struct {
	Clients      int64
	LoadedChunks int64
	Edits        int64
	Rejected     int64
	Dropped      int64
	Flushes      int64
}

// AuditLoggers fans one entry out to several sinks and returns the first error.
type AuditLoggers []AuditLogger

func (ls AuditLoggers) WriteAudit(e AuditEntry) error {
	var first error
	for _, l := range ls {
		if l == nil {
			continue
		}
		if err := l.WriteAudit(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
