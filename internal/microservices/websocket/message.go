package websocket

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Message protocol: the server only ever sends Event frames.

type EventType string

const (
	TypeBorrowed EventType = "borrowed"
	TypeReturned EventType = "returned"
)

// Event reports a book's availability right after a loan changed it.
type Event struct {
	Type            EventType `json:"type"`
	BookID          string    `json:"bookId"`
	Title           string    `json:"title,omitempty"`
	AvailableCopies int       `json:"availableCopies"`
	Copies          int       `json:"copies"`
	Timestamp       time.Time `json:"timestamp"`
}

// ToJSON: marshal Event struct to JSON
func (e Event) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal feed event to JSON", "error", err)
		return nil, err
	}
	return data, nil
}
