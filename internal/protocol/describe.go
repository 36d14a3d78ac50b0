package protocol

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// PacketView is the JSON debug form of a packet, used by logs and cmd/bot.
// Chunk payloads are summarized by size.
type PacketView struct {
	Envelope      string `json:"envelope"`
	Type          string `json:"type"`
	Authenticated bool   `json:"authenticated"`
	Payload       any    `json:"payload"`
}

type chunkView struct {
	X     int32 `json:"x"`
	Z     int32 `json:"z"`
	Bytes int   `json:"bytes"`
}

type blockView struct {
	Pos   BlockPos `json:"pos"`
	Kind  string   `json:"kind"`
	Meta  uint8    `json:"meta"`
	Light uint8    `json:"light"`
}

func View(p Packet) PacketView {
	v := PacketView{
		Envelope:      p.Msg.Envelope().String(),
		Type:          reflect.TypeOf(p.Msg).Name(),
		Authenticated: p.Authenticated(),
	}
	switch m := p.Msg.(type) {
	case ChunkProvided:
		v.Payload = chunkView{X: m.X, Z: m.Z, Bytes: len(m.Data)}
	case SetBlock:
		v.Payload = blockView{Pos: m.Pos, Kind: m.Block.Kind.String(), Meta: m.Block.Meta, Light: m.Block.Light()}
	case BlockChanged:
		v.Payload = blockView{Pos: m.Pos, Kind: m.Block.Kind.String(), Meta: m.Block.Meta, Light: m.Block.Light()}
	case GiveUserSessionToken:
		v.Payload = map[string]string{"token": "<redacted>"}
	default:
		v.Payload = m
	}
	return v
}

// Describe renders the debug view as one JSON line.
func Describe(p Packet) string {
	if p.Msg == nil {
		return "{}"
	}
	b, err := json.Marshal(View(p))
	if err != nil {
		return fmt.Sprintf("{\"error\":%q}", err.Error())
	}
	return string(b)
}
