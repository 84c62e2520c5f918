// Package ws adapts gorilla/websocket connections to the hub's abstract
// connection capability: JSON framing, a buffered single-writer outbound
// queue, and event decoding for the read side.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
)

const writeWait = 10 * time.Second

// Ensure *Conn implements the contract.Connection interface at compile time.
var _ contract.Connection = (*Conn)(nil)

// Conn is one client connection. All writes to the socket go through a
// single writer goroutine draining the outbound channel, so messages
// enqueued by one broadcaster goroutine are delivered in issuance order.
type Conn struct {
	id        string
	socket    *websocket.Conn
	outbound  chan chat.Message
	done      chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

func newConn(log *slog.Logger, socket *websocket.Conn, bufferSize int) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		socket:   socket,
		outbound: make(chan chat.Message, bufferSize),
		done:     make(chan struct{}),
		log:      log,
	}
}

func (c *Conn) ID() string { return c.id }

// Send enqueues msg for delivery. It never blocks behind the socket: a full
// outbound buffer means the client cannot keep up and is reported as a
// delivery failure so the hub can evict it.
func (c *Conn) Send(ctx context.Context, msg chat.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return errors.ErrDelivery
	default:
	}

	select {
	case c.outbound <- msg:
		return nil
	case <-c.done:
		return errors.ErrDelivery
	default:
		return fmt.Errorf("%w: outbound buffer full", errors.ErrDelivery)
	}
}

// Close is idempotent and safe from any goroutine. The writer goroutine
// owns the socket teardown.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// writePump is the single writer for the socket. It exits when the
// connection is closed or a write fails, closing the underlying socket so
// the read loop unblocks.
func (c *Conn) writePump() {
	defer func() {
		_ = c.socket.Close()
	}()

	for {
		select {
		case msg := <-c.outbound:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(msg); err != nil {
				c.log.Debug("socket write failed", "connection_id", c.id, "error", err)
				return
			}
		case <-c.done:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
