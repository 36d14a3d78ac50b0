package protocol

import _ "embed"

//go:embed schemas/packet.schema.json
var PacketViewSchema string
