package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"voxelgrid.ai/internal/protocol"
	"voxelgrid.ai/internal/sim/world"
)

type Server struct {
	world  *world.World
	log    *log.Logger
	outbox int

	upgrader websocket.Upgrader

	decodeErrors atomic.Int64
}

func NewServer(w *world.World, logger *log.Logger, outbox int) *Server {
	if outbox <= 0 {
		outbox = 512
	}
	return &Server{
		world:  w,
		log:    logger,
		outbox: outbox,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// DecodeErrors counts inbound packets dropped because they did not decode.
func (s *Server) DecodeErrors() int64 { return s.decodeErrors.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(1 << 20)

		out := make(chan []byte, s.outbox)
		token := s.handshake(conn, out)
		if token == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Packets that fail to decode are logged and dropped;
		// the connection stays open.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			p, err := protocol.Decode(msg)
			if err != nil {
				s.decodeErrors.Inc()
				s.log.Printf("drop undecodable packet (%d bytes): %v", len(msg), err)
				continue
			}
			if p.Msg.Envelope() != protocol.EnvClientToServer {
				s.log.Printf("drop %s packet after handshake", p.Msg.Envelope())
				continue
			}
			if p.Token != token {
				queue(out, protocol.ServerError{Code: protocol.ErrNotAuthenticated, Message: "bad session token"})
				continue
			}
			select {
			case s.world.Inbox() <- world.RequestEnvelope{Token: token, Msg: p.Msg}:
			case <-ctx.Done():
			}
		}

		// Cleanup.
		s.world.Leave() <- token
	}
}

// handshake runs ClientRequestJoin -> GiveUserSessionToken -> JoinConfirmed
// and returns the session token, or "" when the client was refused.
func (s *Server) handshake(conn *websocket.Conn, out chan []byte) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}
	p, err := protocol.Decode(msg)
	if err != nil {
		s.decodeErrors.Inc()
		closeWith(conn, "expected ClientRequestJoin")
		return ""
	}
	join, ok := p.Msg.(protocol.ClientRequestJoin)
	if !ok {
		closeWith(conn, "expected ClientRequestJoin")
		return ""
	}

	resp := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{Name: join.Name, Version: join.Version, Out: out, Resp: resp}
	jr := <-resp
	if jr.ErrCode != "" {
		_ = writePacket(conn, protocol.Packet{Msg: protocol.ServerError{Code: jr.ErrCode, Message: "join refused"}})
		closeWith(conn, jr.ErrCode)
		return ""
	}

	if err := writePacket(conn, protocol.Packet{Msg: protocol.GiveUserSessionToken{Token: jr.Token}}); err != nil {
		s.world.Leave() <- jr.Token
		return ""
	}
	confirm := protocol.Packet{Token: jr.Token, Msg: protocol.JoinConfirmed{SpawnX: jr.SpawnX, SpawnZ: jr.SpawnZ}}
	if err := writePacket(conn, confirm); err != nil {
		s.world.Leave() <- jr.Token
		return ""
	}
	s.log.Printf("session %s joined as %q", jr.Token, join.Name)
	return jr.Token
}

func queue(out chan []byte, msg protocol.Message) {
	select {
	case out <- protocol.Encode(protocol.Packet{Msg: msg}):
	default:
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writePacket(conn *websocket.Conn, p protocol.Packet) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.BinaryMessage, protocol.Encode(p))
}
