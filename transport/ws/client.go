package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one live websocket connection. The read pump feeds the
// session handler; the write pump drains the send buffer.
type Client struct {
	id     string
	socket *websocket.Conn
	send   chan []byte
	hub    *Hub
}

func newClient(id string, socket *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:     id,
		socket: socket,
		send:   make(chan []byte, sendBufferSize),
		hub:    hub,
	}
}

// push queues an outbound frame, dropping it if the client is too slow
// to drain its buffer. The coordinator must never block on a send.
func (c *Client) push(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.log.Debug("Send buffer full, dropping frame", "connection_id", c.id)
	}
}

func (c *Client) readPump() {
	defer c.socket.Close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("Read failed", "connection_id", c.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.hub.SendTo(c.id, "error", map[string]string{"message": "invalid frame"})
			continue
		}
		c.hub.handler.OnEvent(c.id, frame.Event, frame.Data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
