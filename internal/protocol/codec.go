package protocol

import (
	"encoding/binary"
	"fmt"

	"voxelgrid.ai/internal/sim/world/block"
)

const (
	MaxStringLen = 256
	MaxChunkData = 8 << 20

	authFlag = 0x80
)

// Encode lays a packet out as
//
//	envelope byte (high bit set when authenticated)
//	[uvarint token length, token bytes]
//	type byte, payload
//
// Integers are zig-zag varints; strings and byte slices are length-prefixed.
func Encode(p Packet) []byte {
	buf := make([]byte, 0, 32)
	head := byte(p.Msg.Envelope())
	if p.Authenticated() {
		head |= authFlag
	}
	buf = append(buf, head)
	if p.Authenticated() {
		buf = appendString(buf, p.Token)
	}
	buf = append(buf, byte(p.Msg.Type()))

	switch m := p.Msg.(type) {
	case ClientRequestJoin:
		buf = appendString(buf, m.Name)
		buf = binary.AppendUvarint(buf, uint64(m.Version))
	case GiveUserSessionToken:
		buf = appendString(buf, m.Token)
	case JoinConfirmed:
		buf = binary.AppendVarint(buf, int64(m.SpawnX))
		buf = binary.AppendVarint(buf, int64(m.SpawnZ))
	case RequestInitialChunks:
	case RequestChunk:
		buf = binary.AppendVarint(buf, int64(m.X))
		buf = binary.AppendVarint(buf, int64(m.Z))
	case SetBlock:
		buf = appendPos(buf, m.Pos)
		buf = append(buf, byte(m.Block.Kind), m.Block.Meta)
	case BreakBlock:
		buf = appendPos(buf, m.Pos)
	case ChunkProvided:
		buf = binary.AppendVarint(buf, int64(m.X))
		buf = binary.AppendVarint(buf, int64(m.Z))
		buf = binary.AppendUvarint(buf, uint64(len(m.Data)))
		buf = append(buf, m.Data...)
	case ConcludeReceiveInitialChunks:
		buf = binary.AppendUvarint(buf, uint64(m.Count))
	case BlockChanged:
		buf = appendPos(buf, m.Pos)
		buf = append(buf, byte(m.Block.Kind), m.Block.Meta)
	case ServerError:
		buf = appendString(buf, m.Code)
		buf = appendString(buf, m.Message)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendPos(buf []byte, p BlockPos) []byte {
	for _, v := range p {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return buf
}

type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) byte() byte {
	if r.err != nil {
		return 0
	}
	if r.off >= len(r.b) {
		r.err = ErrShort
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.b[r.off:])
	if n <= 0 {
		r.err = ErrShort
		return 0
	}
	r.off += n
	return v
}

func (r *reader) int32() int32 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.b[r.off:])
	if n <= 0 {
		r.err = ErrShort
		return 0
	}
	if v < -1<<31 || v > 1<<31-1 {
		r.err = fmt.Errorf("%w: int32 overflow", ErrTooLarge)
		return 0
	}
	r.off += n
	return int32(v)
}

func (r *reader) bytes(max int) []byte {
	n := r.uvarint()
	if r.err != nil {
		return nil
	}
	if n > uint64(max) {
		r.err = fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
		return nil
	}
	if uint64(len(r.b)-r.off) < n {
		r.err = ErrShort
		return nil
	}
	out := append([]byte(nil), r.b[r.off:r.off+int(n)]...)
	r.off += int(n)
	return out
}

func (r *reader) string() string { return string(r.bytes(MaxStringLen)) }

func (r *reader) pos() BlockPos {
	return BlockPos{r.int32(), r.int32(), r.int32()}
}

func (r *reader) block() block.Block {
	b := block.Block{Kind: block.Kind(r.byte()), Meta: r.byte()}
	if r.err == nil && !b.Kind.Valid() {
		r.err = fmt.Errorf("%w: block kind %d", ErrUnknownType, b.Kind)
	}
	return b
}

// Decode parses one packet. The whole input must be consumed.
func Decode(data []byte) (Packet, error) {
	var p Packet
	r := &reader{b: data}
	head := r.byte()
	if r.err == nil && head&authFlag != 0 {
		p.Token = r.string()
	}
	env := Envelope(head &^ authFlag)
	typ := MsgType(r.byte())
	if r.err != nil {
		return p, r.err
	}

	switch {
	case env == EnvAuth && typ == TypeClientRequestJoin:
		m := ClientRequestJoin{Name: r.string()}
		m.Version = uint32(r.uvarint())
		p.Msg = m
	case env == EnvAuth && typ == TypeGiveUserSessionToken:
		p.Msg = GiveUserSessionToken{Token: r.string()}
	case env == EnvAuth && typ == TypeJoinConfirmed:
		p.Msg = JoinConfirmed{SpawnX: r.int32(), SpawnZ: r.int32()}
	case env == EnvClientToServer && typ == TypeRequestInitialChunks:
		p.Msg = RequestInitialChunks{}
	case env == EnvClientToServer && typ == TypeRequestChunk:
		p.Msg = RequestChunk{X: r.int32(), Z: r.int32()}
	case env == EnvClientToServer && typ == TypeSetBlock:
		p.Msg = SetBlock{Pos: r.pos(), Block: r.block()}
	case env == EnvClientToServer && typ == TypeBreakBlock:
		p.Msg = BreakBlock{Pos: r.pos()}
	case env == EnvServerToClient && typ == TypeChunkProvided:
		m := ChunkProvided{X: r.int32(), Z: r.int32()}
		m.Data = r.bytes(MaxChunkData)
		p.Msg = m
	case env == EnvServerToClient && typ == TypeConcludeReceiveInitialChunks:
		p.Msg = ConcludeReceiveInitialChunks{Count: uint32(r.uvarint())}
	case env == EnvServerToClient && typ == TypeBlockChanged:
		p.Msg = BlockChanged{Pos: r.pos(), Block: r.block()}
	case env == EnvServerToClient && typ == TypeServerError:
		m := ServerError{Code: r.string()}
		m.Message = r.string()
		p.Msg = m
	default:
		return Packet{}, fmt.Errorf("%w: %s/%d", ErrUnknownType, env, typ)
	}
	if r.err != nil {
		return Packet{}, r.err
	}
	if r.off != len(data) {
		return Packet{}, fmt.Errorf("%w: %d", ErrTrailing, len(data)-r.off)
	}
	return p, nil
}
