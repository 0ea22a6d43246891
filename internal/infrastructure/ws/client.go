package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client wraps one live websocket connection. The ID is the opaque
// connection handle the registry and rooms key on; which user owns
// the connection is the registry's business, not the client's.
type Client struct {
	ID      string
	conn    *safeConn
	Message chan *ServerEvent
	done    chan struct{}
}

func NewClient(conn *websocket.Conn, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Client{
		ID:      uuid.NewString(),
		conn:    newSafeConn(conn),
		Message: make(chan *ServerEvent, queueSize), // buffered to avoid dead-locks on slow clients
		done:    make(chan struct{}),
	}
}

// Send queues an event for the write pump. Returns false when the
// client's buffer is full or the connection is closing; the event is
// dropped, never blocked on.
func (c *Client) Send(evt *ServerEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Message <- evt:
		return true
	default:
		return false
	}
}

// ReadPump decodes inbound envelopes and dispatches them in arrival
// order. It owns connection teardown: when the read loop ends the
// disconnect handler runs exactly once.
func (c *Client) ReadPump(core *Core) {
	defer func() {
		core.HandleDisconnect(context.Background(), c)
		close(c.done)
		_ = c.conn.Close()
	}()

	if core.maxMessageBytes > 0 {
		c.conn.SetReadLimit(int64(core.maxMessageBytes))
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				core.logger.Debugf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Event == "" {
			core.logger.Debugf("malformed frame from client %s dropped", c.ID)
			continue
		}

		core.Dispatch(context.Background(), c, &envelope)
	}
}

// WritePump serializes queued events onto the connection.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.Message:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
