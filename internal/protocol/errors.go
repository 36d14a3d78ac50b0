package protocol

import "errors"

// Error codes carried by ServerError.
const (
	// Protocol/transport validation.
	ErrProtoBadRequest  = "E_PROTO_BAD_REQUEST"
	ErrNotAuthenticated = "E_NOT_AUTHENTICATED"
	ErrProtoVersion     = "E_PROTO_VERSION"

	// World requests.
	ErrChunkOutOfRange = "E_CHUNK_OUT_OF_RANGE"
	ErrNotLoaded       = "E_NOT_LOADED"
	ErrRejected        = "E_REJECTED"
	ErrBusy            = "E_BUSY"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrNotAuthenticated: {},
	ErrProtoVersion:     {},
	ErrChunkOutOfRange:  {},
	ErrNotLoaded:        {},
	ErrRejected:         {},
	ErrBusy:             {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Decode failures.
var (
	ErrShort       = errors.New("protocol: truncated packet")
	ErrUnknownType = errors.New("protocol: unknown message type")
	ErrTooLarge    = errors.New("protocol: field too large")
	ErrTrailing    = errors.New("protocol: trailing bytes")
)
