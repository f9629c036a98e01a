package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single socket write.
	writeWait = 10 * time.Second

	// pongWait is how long a client may stay silent. Clients heartbeat
	// every 30s, so three missed beats close the connection.
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is one WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	username string
	role     string
	send     chan []byte
	mu       sync.Mutex // guards conn writes; gorilla allows one writer at a time
}

func newClient(hub *Hub, conn *websocket.Conn, username, role string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		username: username,
		role:     role,
		send:     make(chan []byte, sendBufferSize),
	}
}

// ReadPump reads frames until the connection fails. It blocks, so the
// connection handler runs it on its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.enqueueUnregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				level.Warn(c.hub.logger).Log("msg", "unexpected close", "user", c.username, "err", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			level.Debug(c.hub.logger).Log("msg", "invalid frame", "user", c.username, "err", err)
			continue
		}

		c.handleEvent(event)
	}
}

// The feed is server-push; heartbeat is the only inbound op.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})
	default:
		level.Debug(c.hub.logger).Log("msg", "unknown op", "user", c.username, "op", event.Op)
	}
}

// sendEvent queues an event for this client only.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		level.Error(c.hub.logger).Log("msg", "failed to marshal event", "user", c.username, "err", err)
		return
	}

	select {
	case c.send <- data:
	default:
		level.Warn(c.hub.logger).Log("msg", "send buffer full, dropping connection", "user", c.username)
		go c.hub.enqueueUnregister(c)
	}
}

// WritePump drains send onto the socket. A closed send channel means the
// hub dropped the client.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
