package world

import (
	"strings"

	"github.com/google/uuid"

	"voxelgrid.ai/internal/protocol"
)

func (w *World) handleJoin(req JoinRequest) {
	if req.Version != protocol.Version {
		req.Resp <- JoinResponse{ErrCode: protocol.ErrProtoVersion}
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "player"
	}
	c := &clientConn{Token: uuid.NewString(), Name: name, Out: req.Out}
	w.clients[c.Token] = c
	w.nClients.Store(int64(len(w.clients)))
	w.log.Printf("join %s (%d online)", name, len(w.clients))

	sx, sz := w.SpawnChunk()
	req.Resp <- JoinResponse{Token: c.Token, SpawnX: sx, SpawnZ: sz}
}

func (w *World) handleLeave(token string) {
	c := w.clients[token]
	if c == nil {
		return
	}
	delete(w.clients, token)
	w.nClients.Store(int64(len(w.clients)))
	w.log.Printf("leave %s (%d online)", c.Name, len(w.clients))
}
