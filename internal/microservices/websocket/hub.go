package websocket

// Central hub fanning availability events out to subscribers.
// Each WebSocket connection runs in its own goroutines but the client set is
// owned by Run, so registration and broadcast go through channels.

import (
	"context"
	"log/slog"
	"sync/atomic"
)

const broadcastBuffer = 64

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	clients    map[*Client]struct{}
	count      atomic.Int64
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			h.logger.Debug("feed subscriber joined", "client_id", c.ID, "book_filter", c.BookID)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case ev := <-h.broadcast:
			payload, err := ev.ToJSON()
			if err != nil {
				continue
			}
			for c := range h.clients {
				if !c.wants(ev) {
					continue
				}
				select {
				case c.SendChannel <- payload:
				default:
					// slow consumer
					h.logger.Warn("feed subscriber too slow, disconnecting", "client_id", c.ID)
					h.drop(c)
				}
			}
		}
	}
}

// Publish queues ev for delivery. It never blocks a borrow or return: when
// the queue is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("feed queue full, event dropped", "book_id", ev.BookID, "type", ev.Type)
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	h.count.Add(-1)
	close(c.SendChannel)
}
