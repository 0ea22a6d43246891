package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// safeConn serializes writes to the underlying websocket connection.
// gorilla permits one concurrent writer only; reads stay unguarded
// because the read pump is the sole reader.
type safeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSafeConn(conn *websocket.Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (c *safeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *safeConn) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *safeConn) SetReadLimit(limit int64) {
	c.conn.SetReadLimit(limit)
}

func (c *safeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
