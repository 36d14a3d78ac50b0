package world

import (
	"context"
	"time"

	"voxelgrid.ai/internal/protocol"
)

func (w *World) Run(ctx context.Context) error {
	flushTicker := time.NewTicker(w.cfg.FlushEvery)
	defer flushTicker.Stop()
	defer w.flushDirty("shutdown")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case token := <-w.leave:
			w.handleLeave(token)
		case req := <-w.admin:
			w.handleAdminSnapshot(req)
		case env := <-w.inbox:
			w.handleRequest(env)
		case <-flushTicker.C:
			w.flushDirty("timer")
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) handleRequest(env RequestEnvelope) {
	c := w.clients[env.Token]
	if c == nil {
		w.log.Printf("request from unknown session dropped: %T", env.Msg)
		w.nDropped.Inc()
		return
	}
	switch m := env.Msg.(type) {
	case protocol.RequestInitialChunks:
		w.handleInitialChunks(c)
	case protocol.RequestChunk:
		w.handleRequestChunk(c, m.X, m.Z)
	case protocol.BreakBlock:
		w.handleBreak(c, m.Pos)
	case protocol.SetBlock:
		w.handlePlace(c, m.Pos, m.Block)
	default:
		w.sendError(c, protocol.ErrProtoBadRequest, "unexpected message")
	}
}

// send encodes and queues a packet without blocking the loop. A full outbox
// drops the packet.
func (w *World) send(c *clientConn, msg protocol.Message) bool {
	b := protocol.Encode(protocol.Packet{Msg: msg})
	select {
	case c.Out <- b:
		return true
	default:
		w.nDropped.Inc()
		w.log.Printf("outbox full for %s, dropped %T", c.Name, msg)
		return false
	}
}

func (w *World) sendError(c *clientConn, code, msg string) {
	w.send(c, protocol.ServerError{Code: code, Message: msg})
}

func (w *World) broadcast(msg protocol.Message) {
	for _, c := range w.clients {
		w.send(c, msg)
	}
}

// StepOnce handles the given requests in order on the calling goroutine,
// the same way Run would. It must not be used while Run is active.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, reqs []RequestEnvelope) {
	for _, j := range joins {
		w.handleJoin(j)
	}
	for _, env := range reqs {
		w.handleRequest(env)
	}
	for _, t := range leaves {
		w.handleLeave(t)
	}
}

// FlushNow persists dirty chunks. Same goroutine rules as StepOnce.
func (w *World) FlushNow() { w.flushDirty("manual") }
