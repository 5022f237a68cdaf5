package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// BookInput carries every field a new book needs.
type BookInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationDate time.Time
	Genre           string
	Copies          int
}

// BookPatch is a partial update; nil fields are left alone. AvailableCopies is
// never patchable, it is recomputed from Copies and the loans outstanding.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationDate *time.Time
	Genre           *string
	Copies          *int
}

type BookPage struct {
	Books       []models.Book
	Total       int64
	TotalPages  int
	CurrentPage int
}

type BookService interface {
	List(ctx context.Context, filter repository.BookFilter) (*BookPage, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, input BookInput) (*models.Book, error)
	Update(ctx context.Context, id string, patch BookPatch) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookService struct {
	books  repository.BookRepository
	store  repository.Store
	logger *slog.Logger
}

func NewBookService(books repository.BookRepository, store repository.Store, logger *slog.Logger) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{books: books, store: store, logger: logger}
}

func (s *bookService) List(ctx context.Context, filter repository.BookFilter) (*BookPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	books, total, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "list books")
	}

	return &BookPage{
		Books:       books,
		Total:       total,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		CurrentPage: filter.Page,
	}, nil
}

func (s *bookService) Get(ctx context.Context, id string) (*models.Book, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get book")
	}
	return book, nil
}

// Create always starts with every copy available.
func (s *bookService) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.books.FindByISBN(ctx, input.ISBN); err == nil {
		return nil, ErrDuplicateKey
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "check isbn")
	}

	book := &models.Book{
		Title:           strings.TrimSpace(input.Title),
		Author:          strings.TrimSpace(input.Author),
		ISBN:            strings.TrimSpace(input.ISBN),
		PublicationDate: input.PublicationDate,
		Genre:           strings.TrimSpace(input.Genre),
		Copies:          input.Copies,
		AvailableCopies: input.Copies,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, translate(err, "create book")
	}

	s.logger.Info("book created", "book_id", book.ID, "isbn", book.ISBN)
	return book, nil
}

// Update locks the book row, so borrows and returns on it wait, and rejects a
// copies value below the number currently on loan.
func (s *bookService) Update(ctx context.Context, id string, patch BookPatch) (*models.Book, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var updated *models.Book
	err := s.store.WithinTx(ctx, func(tx repository.TxRepositories) error {
		book, err := tx.Books.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		onLoan, err := tx.Records.CountActiveByBook(ctx, id)
		if err != nil {
			return err
		}

		patch.applyTo(book)
		if int64(book.Copies) < onLoan {
			return ErrCopiesBelowOnLoan
		}
		book.AvailableCopies = book.Copies - int(onLoan)

		if err := tx.Books.Update(ctx, book); err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, translate(err, "update book")
	}

	s.logger.Info("book updated", "book_id", id, "copies", updated.Copies, "available_copies", updated.AvailableCopies)
	return updated, nil
}

// Delete refuses while any copy is on loan.
func (s *bookService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	err := s.store.WithinTx(ctx, func(tx repository.TxRepositories) error {
		if _, err := tx.Books.FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		onLoan, err := tx.Records.CountActiveByBook(ctx, id)
		if err != nil {
			return err
		}
		if onLoan > 0 {
			return ErrBookOnLoan
		}
		return tx.Books.Delete(ctx, id)
	})
	if err != nil {
		return translate(err, "delete book")
	}

	s.logger.Info("book deleted", "book_id", id)
	return nil
}

func (in BookInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Author) == "" {
		missing = append(missing, "author")
	}
	if strings.TrimSpace(in.ISBN) == "" {
		missing = append(missing, "isbn")
	}
	if strings.TrimSpace(in.Genre) == "" {
		missing = append(missing, "genre")
	}
	if in.PublicationDate.IsZero() {
		missing = append(missing, "publication_date")
	}
	if len(missing) > 0 {
		return validationError("%s required", strings.Join(missing, ", "))
	}
	if in.Copies < 0 {
		return validationError("copies must not be negative")
	}
	return nil
}

func (p BookPatch) validate() error {
	for name, v := range map[string]*string{"title": p.Title, "author": p.Author, "isbn": p.ISBN, "genre": p.Genre} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return validationError("%s must not be empty", name)
		}
	}
	if p.PublicationDate != nil && p.PublicationDate.IsZero() {
		return validationError("publication_date must not be empty")
	}
	if p.Copies != nil && *p.Copies < 0 {
		return validationError("copies must not be negative")
	}
	return nil
}

func (p BookPatch) applyTo(b *models.Book) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.ISBN != nil {
		b.ISBN = strings.TrimSpace(*p.ISBN)
	}
	if p.PublicationDate != nil {
		b.PublicationDate = *p.PublicationDate
	}
	if p.Genre != nil {
		b.Genre = strings.TrimSpace(*p.Genre)
	}
	if p.Copies != nil {
		b.Copies = *p.Copies
	}
}
