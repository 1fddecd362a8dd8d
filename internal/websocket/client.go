package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Client represents one WebSocket connection. UserID is set when the
// connection authenticates and stays for the connection's lifetime.
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	userID string
	mu     sync.RWMutex
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// SetUser records the connection's authenticated identity.
func (c *Client) SetUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// User returns the connection's authenticated identity, if any.
func (c *Client) User() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// WriteLoop handles outbound messages from the Send channel
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	_ = c.Conn.Close()
}
