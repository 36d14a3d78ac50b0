package protocol

import "voxelgrid.ai/internal/sim/world/block"

// Version is sent in ClientRequestJoin and checked by the server.
const Version = 1

// Envelope tags which conversation a packet belongs to.
type Envelope uint8

const (
	EnvAuth Envelope = iota + 1
	EnvClientToServer
	EnvServerToClient
)

func (e Envelope) String() string {
	switch e {
	case EnvAuth:
		return "AUTH"
	case EnvClientToServer:
		return "CLIENT_TO_SERVER"
	case EnvServerToClient:
		return "SERVER_TO_CLIENT"
	default:
		return "UNKNOWN"
	}
}

type MsgType uint8

// Auth messages.
const (
	TypeClientRequestJoin MsgType = iota + 1
	TypeGiveUserSessionToken
	TypeJoinConfirmed
)

// Client to server messages.
const (
	TypeRequestInitialChunks MsgType = iota + 1
	TypeRequestChunk
	TypeSetBlock
	TypeBreakBlock
)

// Server to client messages.
const (
	TypeChunkProvided MsgType = iota + 1
	TypeConcludeReceiveInitialChunks
	TypeBlockChanged
	TypeServerError
)

// Message is one payload. Each concrete type belongs to exactly one envelope.
type Message interface {
	Envelope() Envelope
	Type() MsgType
}

// Packet is the unit on the wire. Token is set on authenticated packets.
type Packet struct {
	Token string
	Msg   Message
}

func (p Packet) Authenticated() bool { return p.Token != "" }

type BlockPos [3]int32

type ClientRequestJoin struct {
	Name    string
	Version uint32
}

type GiveUserSessionToken struct {
	Token string
}

type JoinConfirmed struct {
	SpawnX, SpawnZ int32
}

type RequestInitialChunks struct{}

type RequestChunk struct {
	X, Z int32
}

type SetBlock struct {
	Pos   BlockPos
	Block block.Block
}

type BreakBlock struct {
	Pos BlockPos
}

// ChunkProvided carries one chunk as deflate(serialized CompressedChunk).
type ChunkProvided struct {
	X, Z int32
	Data []byte
}

type ConcludeReceiveInitialChunks struct {
	Count uint32
}

type BlockChanged struct {
	Pos   BlockPos
	Block block.Block
}

type ServerError struct {
	Code    string
	Message string
}

func (ClientRequestJoin) Envelope() Envelope    { return EnvAuth }
func (GiveUserSessionToken) Envelope() Envelope { return EnvAuth }
func (JoinConfirmed) Envelope() Envelope        { return EnvAuth }

func (RequestInitialChunks) Envelope() Envelope { return EnvClientToServer }
func (RequestChunk) Envelope() Envelope         { return EnvClientToServer }
func (SetBlock) Envelope() Envelope             { return EnvClientToServer }
func (BreakBlock) Envelope() Envelope           { return EnvClientToServer }

func (ChunkProvided) Envelope() Envelope                { return EnvServerToClient }
func (ConcludeReceiveInitialChunks) Envelope() Envelope { return EnvServerToClient }
func (BlockChanged) Envelope() Envelope                 { return EnvServerToClient }
func (ServerError) Envelope() Envelope                  { return EnvServerToClient }

func (ClientRequestJoin) Type() MsgType    { return TypeClientRequestJoin }
func (GiveUserSessionToken) Type() MsgType { return TypeGiveUserSessionToken }
func (JoinConfirmed) Type() MsgType        { return TypeJoinConfirmed }

func (RequestInitialChunks) Type() MsgType { return TypeRequestInitialChunks }
func (RequestChunk) Type() MsgType         { return TypeRequestChunk }
func (SetBlock) Type() MsgType             { return TypeSetBlock }
func (BreakBlock) Type() MsgType           { return TypeBreakBlock }

func (ChunkProvided) Type() MsgType                { return TypeChunkProvided }
func (ConcludeReceiveInitialChunks) Type() MsgType { return TypeConcludeReceiveInitialChunks }
func (BlockChanged) Type() MsgType                 { return TypeBlockChanged }
func (ServerError) Type() MsgType                  { return TypeServerError }
