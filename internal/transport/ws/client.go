package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"voxelgrid.ai/internal/protocol"
)

var ErrClosed = errors.New("ws: client closed")

// Client is the player side of a connection. A reader goroutine decodes
// server packets into a buffered channel; the game loop drains it with TryRecv.
type Client struct {
	conn *websocket.Conn
	log  *log.Logger

	Token  string
	SpawnX int32
	SpawnZ int32

	in   chan protocol.Message
	done chan struct{}

	wmu     sync.Mutex
	once    sync.Once
	dropped atomic.Int64
}

// Dial connects and performs the join handshake.
func Dial(ctx context.Context, url, name string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn: conn,
		log:  logger,
		in:   make(chan protocol.Message, 4096),
		done: make(chan struct{}),
	}
	if err := c.handshake(name); err != nil {
		_ = conn.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) handshake(name string) error {
	if err := c.write(protocol.Packet{Msg: protocol.ClientRequestJoin{Name: name, Version: protocol.Version}}); err != nil {
		return err
	}
	for joined := false; !joined; {
		_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
		p, err := protocol.Decode(msg)
		if err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
		switch m := p.Msg.(type) {
		case protocol.GiveUserSessionToken:
			c.Token = m.Token
		case protocol.JoinConfirmed:
			if c.Token == "" {
				return errors.New("handshake: confirmed before token")
			}
			c.SpawnX, c.SpawnZ = m.SpawnX, m.SpawnZ
			joined = true
		case protocol.ServerError:
			return fmt.Errorf("handshake refused: %s: %s", m.Code, m.Message)
		default:
			return fmt.Errorf("handshake: unexpected %T", m)
		}
	}
	_ = c.conn.SetReadDeadline(time.Time{})
	return nil
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		p, err := protocol.Decode(msg)
		if err != nil {
			c.dropped.Inc()
			if c.log != nil {
				c.log.Printf("drop undecodable packet (%d bytes): %v", len(msg), err)
			}
			continue
		}
		select {
		case c.in <- p.Msg:
		case <-c.done:
			return
		}
	}
}

// TryRecv returns the next server message without blocking.
func (c *Client) TryRecv() (protocol.Message, bool) {
	select {
	case m := <-c.in:
		return m, true
	default:
		return nil, false
	}
}

// Recv blocks until a message arrives, the client closes, or ctx ends.
func (c *Client) Recv(ctx context.Context) (protocol.Message, error) {
	select {
	case m := <-c.in:
		return m, nil
	case <-c.done:
		select {
		case m := <-c.in:
			return m, nil
		default:
		}
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send wraps msg in an authenticated packet.
func (c *Client) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	return c.write(protocol.Packet{Token: c.Token, Msg: msg})
}

// SendRaw writes bytes as-is. Used to exercise server-side decode handling.
func (c *Client) SendRaw(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.BinaryMessage, b)
}

func (c *Client) write(p protocol.Packet) error { return c.SendRaw(protocol.Encode(p)) }

func (c *Client) Dropped() int64 { return c.dropped.Load() }

func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.wmu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.wmu.Unlock()
		err = c.conn.Close()
	})
	return err
}
