package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Individual subscriber connection.

const ( // ping pong (2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // no pong within this window = dead connection
	PingPeriod     = (PongWait * 9) / 10 // ping before PongWait expires, 10% slack for jitter
	MaxMessageSize = 512                 // subscribers only send control frames
	sendBuffer     = 32
)

type Client struct {
	ID          string          // connection id
	BookID      string          // only events for this book; empty = all books
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // outbound messages, closed by the hub
	Hub         *Hub
}

func NewClient(id, bookID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		BookID:      bookID,
		Conn:        conn,
		SendChannel: make(chan []byte, sendBuffer),
		Hub:         hub,
	}
}

func (c *Client) wants(ev Event) bool {
	return c.BookID == "" || c.BookID == ev.BookID
}

// ReadPump drains the peer so pongs and close frames are processed. Anything
// the subscriber sends is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Debug("feed subscriber read error", "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

// WritePump forwards queued events and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				// hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
