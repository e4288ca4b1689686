package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	loginWait      = 15 * time.Second
	maxMessageSize = 1 << 20
	outboundQueue  = 256
)

var (
	errConnectionClosed = errors.New("connection closed")
	errSlowConsumer     = errors.New("outbound queue full")
)

// Ensure connection implements the interface.
var _ domain.Conn = (*connection)(nil)

// connection owns one websocket. Only writeLoop writes to it.
type connection struct {
	ws       *websocket.Conn
	outbound chan []byte
	done     chan struct{}
	finished chan struct{}
	once     sync.Once

	// stall is how long Send waits on a full queue before giving up on the peer.
	stall time.Duration
}

func newConnection(ws *websocket.Conn) *connection {
	c := &connection{
		ws:       ws,
		outbound: make(chan []byte, outboundQueue),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		stall:    writeWait,
	}
	go c.writeLoop()
	return c
}

// Send encodes msg and queues it. When the queue is full Send waits for the
// writer to drain it; a peer whose queue stays full for the whole stall
// window is disconnected rather than stalling the document.
func (c *connection) Send(ctx context.Context, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	select {
	case <-c.done:
		return errConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case c.outbound <- data:
		return nil
	default:
	}

	timer := time.NewTimer(c.stall)
	defer timer.Stop()

	select {
	case c.outbound <- data:
		return nil
	case <-c.done:
		return errConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		c.close()
		return errSlowConsumer
	}
}

// close stops the writer after it flushed what is queued.
func (c *connection) close() {
	c.once.Do(func() { close(c.done) })
}

// wait blocks until the writer has closed the socket.
func (c *connection) wait() {
	<-c.finished
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		close(c.finished)
	}()

	for {
		select {
		case data := <-c.outbound:
			if err := c.write(websocket.TextMessage, data); err != nil {
				logger.Debug("websocket write: %v", err)
				c.close()
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *connection) flush() {
	for {
		select {
		case data := <-c.outbound:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *connection) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}
