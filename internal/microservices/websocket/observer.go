package websocket

import (
	"context"
	"time"

	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/service"
)

// Observe wraps svc so every committed borrow or return is published to the
// hub. Failed operations publish nothing.
func (h *Hub) Observe(svc service.BorrowService) service.BorrowService {
	return &observedBorrows{BorrowService: svc, hub: h}
}

type observedBorrows struct {
	service.BorrowService
	hub *Hub
}

func (o *observedBorrows) Borrow(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	record, err := o.BorrowService.Borrow(ctx, bookID, userID)
	if err == nil {
		o.publish(TypeBorrowed, record)
	}
	return record, err
}

func (o *observedBorrows) Return(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	record, err := o.BorrowService.Return(ctx, bookID, userID)
	if err == nil {
		o.publish(TypeReturned, record)
	}
	return record, err
}

func (o *observedBorrows) publish(t EventType, record *models.BorrowingRecord) {
	// without the joined book there is no availability to report
	if record == nil || record.Book == nil {
		return
	}
	o.hub.Publish(Event{
		Type:            t,
		BookID:          record.BookID,
		Title:           record.Book.Title,
		AvailableCopies: record.Book.AvailableCopies,
		Copies:          record.Book.Copies,
		Timestamp:       time.Now().UTC(),
	})
}
