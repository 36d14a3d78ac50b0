package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelgrid.ai/internal/sim/world/block"
)

func samplePackets() []Packet {
	stone := block.New(block.Stone).WithLight(9)
	return []Packet{
		{Msg: ClientRequestJoin{Name: "alice", Version: Version}},
		{Msg: GiveUserSessionToken{Token: "tok-1"}},
		{Token: "tok-1", Msg: JoinConfirmed{SpawnX: -3, SpawnZ: 7}},
		{Token: "tok-1", Msg: RequestInitialChunks{}},
		{Token: "tok-1", Msg: RequestChunk{X: -100000, Z: 42}},
		{Token: "tok-1", Msg: SetBlock{Pos: BlockPos{1, 255, -9}, Block: stone}},
		{Token: "tok-1", Msg: BreakBlock{Pos: BlockPos{-1, 0, 1 << 20}}},
		{Msg: ChunkProvided{X: 1, Z: -1, Data: []byte{1, 2, 3, 4}}},
		{Msg: ConcludeReceiveInitialChunks{Count: 81}},
		{Msg: BlockChanged{Pos: BlockPos{5, 6, 7}, Block: block.New(block.Air)}},
		{Msg: ServerError{Code: ErrNotLoaded, Message: "chunk 3,4 not loaded"}},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, p := range samplePackets() {
		got, err := Decode(Encode(p))
		if err != nil {
			t.Fatalf("%T: decode: %v", p.Msg, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("%T: got %+v want %+v", p.Msg, got, p)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	for _, p := range samplePackets() {
		b := Encode(p)
		for n := 0; n < len(b); n++ {
			if _, err := Decode(b[:n]); err == nil {
				t.Fatalf("%T: decode of %d/%d bytes succeeded", p.Msg, n, len(b))
			}
		}
	}
}

func TestDecodeTrailing(t *testing.T) {
	b := append(Encode(Packet{Msg: ConcludeReceiveInitialChunks{Count: 1}}), 0)
	if _, err := Decode(b); !errors.Is(err, ErrTrailing) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode([]byte{byte(EnvClientToServer), 99}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err=%v", err)
	}
	if _, err := Decode([]byte{9, 1}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err=%v", err)
	}
	// Server messages are not accepted under the client envelope.
	b := Encode(Packet{Msg: ServerError{Code: "x"}})
	b[0] = byte(EnvClientToServer)
	if _, err := Decode(b); err == nil {
		t.Fatalf("expected envelope mismatch to fail")
	}
}

func TestDecodeBadBlockKind(t *testing.T) {
	b := Encode(Packet{Msg: BlockChanged{Pos: BlockPos{0, 0, 0}, Block: block.New(block.Dirt)}})
	b[len(b)-2] = 200
	if _, err := Decode(b); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeOversizedString(t *testing.T) {
	b := []byte{byte(EnvAuth), byte(TypeGiveUserSessionToken), 0xff, 0xff, 0x03}
	if _, err := Decode(b); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
}

func TestAuthFlag(t *testing.T) {
	b := Encode(Packet{Token: "abc", Msg: RequestInitialChunks{}})
	if b[0]&authFlag == 0 {
		t.Fatalf("auth flag not set: %x", b[0])
	}
	b = Encode(Packet{Msg: RequestInitialChunks{}})
	if b[0]&authFlag != 0 {
		t.Fatalf("auth flag set on anonymous packet")
	}
}

func TestDescribeMatchesSchema(t *testing.T) {
	sch, err := jsonschema.CompileString("packet.schema.json", PacketViewSchema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, p := range samplePackets() {
		var v any
		if err := json.Unmarshal([]byte(Describe(p)), &v); err != nil {
			t.Fatalf("%T: %v", p.Msg, err)
		}
		if err := sch.Validate(v); err != nil {
			t.Fatalf("%T: %v", p.Msg, err)
		}
	}
}

func TestDescribeRedactsToken(t *testing.T) {
	s := Describe(Packet{Msg: GiveUserSessionToken{Token: "secret"}})
	if !json.Valid([]byte(s)) || strings.Contains(s, "secret") {
		t.Fatalf("describe leaked token: %s", s)
	}
}
