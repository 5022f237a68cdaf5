package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BorrowService owns the availability/loan state machine.
type BorrowService interface {
	Borrow(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error)
	Return(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error)
	History(ctx context.Context, userID string) ([]models.BorrowingRecord, error)
}

type borrowService struct {
	books   repository.BookRepository
	records repository.BorrowingRecordRepository
	store   repository.Store
	cache   repository.ReportCache
	logger  *slog.Logger
	now     func() time.Time
}

func NewBorrowService(
	books repository.BookRepository,
	records repository.BorrowingRecordRepository,
	store repository.Store,
	cache repository.ReportCache,
	logger *slog.Logger,
) BorrowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &borrowService{
		books:   books,
		records: records,
		store:   store,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Borrow lends one copy of bookID to userID. The availability check up front
// is only a fast path; the conditional decrement inside the transaction is
// what prevents over-lending, and the partial unique index on active loans is
// what prevents double-borrowing.
func (s *borrowService) Borrow(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if !validID(bookID) {
		return nil, ErrNotFound
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, translate(err, "load book")
	}
	if book.AvailableCopies < 1 {
		return nil, ErrUnavailable
	}

	if _, err := s.records.FindActive(ctx, bookID, userID); err == nil {
		return nil, ErrAlreadyBorrowed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "check active loan")
	}

	record := &models.BorrowingRecord{
		ID:         uuid.New().String(),
		BookID:     bookID,
		UserID:     userID,
		Status:     models.StatusBorrowed,
		BorrowDate: s.now().UTC(),
	}

	err = s.store.WithinTx(ctx, func(tx repository.TxRepositories) error {
		ok, err := tx.Books.DecrementAvailable(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnavailable
		}
		if err := tx.Records.Create(ctx, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBorrowed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "borrow book")
	}

	s.invalidateReports(ctx)
	s.logger.Info("book borrowed", "book_id", bookID, "user_id", userID, "record_id", record.ID)

	return s.loadJoined(ctx, record)
}

// Return closes the caller's active loan on bookID and puts the copy back,
// never above the book's total copies.
func (s *borrowService) Return(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if !validID(bookID) {
		return nil, ErrNotFound
	}

	var returned *models.BorrowingRecord
	err := s.store.WithinTx(ctx, func(tx repository.TxRepositories) error {
		active, err := tx.Records.FindActive(ctx, bookID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveLoan
		}
		if err != nil {
			return err
		}

		at := s.now().UTC()
		ok, err := tx.Records.MarkReturned(ctx, active.ID, at)
		if err != nil {
			return err
		}
		if !ok {
			// a concurrent return got there first
			return ErrNoActiveLoan
		}

		ok, err = tx.Books.IncrementAvailable(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("available copies already at total, increment skipped",
				"book_id", bookID, "record_id", active.ID)
		}

		active.Status = models.StatusReturned
		active.ReturnDate = &at
		returned = active
		return nil
	})
	if err != nil {
		return nil, translate(err, "return book")
	}

	s.invalidateReports(ctx)
	s.logger.Info("book returned", "book_id", bookID, "user_id", userID, "record_id", returned.ID)

	return s.loadJoined(ctx, returned)
}

// History lists every record of userID, newest borrow first.
func (s *borrowService) History(ctx context.Context, userID string) ([]models.BorrowingRecord, error) {
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "borrow history")
	}
	return records, nil
}

// loadJoined re-reads the committed record with its Book and User. The
// mutation already committed, so a failed re-read falls back to the bare record.
func (s *borrowService) loadJoined(ctx context.Context, record *models.BorrowingRecord) (*models.BorrowingRecord, error) {
	joined, err := s.records.FindByID(ctx, record.ID)
	if err != nil {
		s.logger.Warn("reload borrowing record failed", "record_id", record.ID, "error", err)
		return record, nil
	}
	return joined, nil
}

func (s *borrowService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", "error", err)
	}
}
