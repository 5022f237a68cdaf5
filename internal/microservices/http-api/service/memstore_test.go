package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for the database. Transactions hold the one
// mutex for their whole duration and roll back by restoring a snapshot, which
// is enough to exercise the same conditional-update contract as Postgres.
type memDB struct {
	mu      sync.Mutex
	books   map[string]models.Book
	records map[string]models.BorrowingRecord
	users   map[string]models.User
	seq     int
}

func newMemDB() *memDB {
	return &memDB{
		books:   map[string]models.Book{},
		records: map[string]models.BorrowingRecord{},
		users:   map[string]models.User{},
	}
}

func (db *memDB) repos() (repository.BookRepository, repository.BorrowingRecordRepository, repository.Store) {
	return &memBooks{db: db}, &memRecords{db: db}, db
}

func (db *memDB) addBook(b models.Book) models.Book {
	db.mu.Lock()
	defer db.mu.Unlock()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	db.books[b.ID] = b
	return b
}

func (db *memDB) addUser(u models.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

func (db *memDB) book(id string) models.Book {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.books[id]
}

func (db *memDB) activeCount(bookID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, r := range db.records {
		if r.BookID == bookID && r.Status == models.StatusBorrowed {
			n++
		}
	}
	return n
}

func (db *memDB) WithinTx(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	books := make(map[string]models.Book, len(db.books))
	for k, v := range db.books {
		books[k] = v
	}
	records := make(map[string]models.BorrowingRecord, len(db.records))
	for k, v := range db.records {
		records[k] = v
	}

	err := fn(repository.TxRepositories{
		Books:   &memBooks{db: db, inTx: true},
		Records: &memRecords{db: db, inTx: true},
	})
	if err != nil {
		db.books = books
		db.records = records
	}
	return err
}

func (db *memDB) guard(inTx bool) func() {
	if inTx {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

type memBooks struct {
	db   *memDB
	inTx bool
}

func (r *memBooks) Create(ctx context.Context, book *models.Book) error {
	defer r.db.guard(r.inTx)()
	for _, b := range r.db.books {
		if b.ISBN == book.ISBN {
			return fmt.Errorf("create book: %w", gorm.ErrDuplicatedKey)
		}
	}
	if book.ID == "" {
		r.db.seq++
		book.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", r.db.seq)
	}
	book.CreatedAt = time.Now()
	r.db.books[book.ID] = *book
	return nil
}

func (r *memBooks) FindByID(ctx context.Context, id string) (*models.Book, error) {
	defer r.db.guard(r.inTx)()
	b, ok := r.db.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *memBooks) FindByIDForUpdate(ctx context.Context, id string) (*models.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *memBooks) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	defer r.db.guard(r.inTx)()
	for _, b := range r.db.books {
		if b.ISBN == isbn {
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBooks) List(ctx context.Context, filter repository.BookFilter) ([]models.Book, int64, error) {
	defer r.db.guard(r.inTx)()
	var all []models.Book
	for _, b := range r.db.books {
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Author)) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memBooks) Update(ctx context.Context, book *models.Book) error {
	defer r.db.guard(r.inTx)()
	for id, b := range r.db.books {
		if id != book.ID && b.ISBN == book.ISBN {
			return fmt.Errorf("update book: %w", gorm.ErrDuplicatedKey)
		}
	}
	r.db.books[book.ID] = *book
	return nil
}

func (r *memBooks) Delete(ctx context.Context, id string) error {
	defer r.db.guard(r.inTx)()
	if _, ok := r.db.books[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.books, id)
	return nil
}

func (r *memBooks) DecrementAvailable(ctx context.Context, id string) (bool, error) {
	defer r.db.guard(r.inTx)()
	b, ok := r.db.books[id]
	if !ok || b.AvailableCopies <= 0 {
		return false, nil
	}
	b.AvailableCopies--
	r.db.books[id] = b
	return true, nil
}

func (r *memBooks) IncrementAvailable(ctx context.Context, id string) (bool, error) {
	defer r.db.guard(r.inTx)()
	b, ok := r.db.books[id]
	if !ok || b.AvailableCopies >= b.Copies {
		return false, nil
	}
	b.AvailableCopies++
	r.db.books[id] = b
	return true, nil
}

type memRecords struct {
	db   *memDB
	inTx bool
}

func (r *memRecords) Create(ctx context.Context, record *models.BorrowingRecord) error {
	defer r.db.guard(r.inTx)()
	for _, existing := range r.db.records {
		if existing.BookID == record.BookID && existing.UserID == record.UserID &&
			existing.Status == models.StatusBorrowed && record.Status == models.StatusBorrowed {
			return fmt.Errorf("create borrowing record: %w", gorm.ErrDuplicatedKey)
		}
	}
	stored := *record
	stored.Book, stored.User = nil, nil
	r.db.records[record.ID] = stored
	return nil
}

func (r *memRecords) FindByID(ctx context.Context, id string) (*models.BorrowingRecord, error) {
	defer r.db.guard(r.inTx)()
	rec, ok := r.db.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.join(rec), nil
}

func (r *memRecords) join(rec models.BorrowingRecord) *models.BorrowingRecord {
	if b, ok := r.db.books[rec.BookID]; ok {
		rec.Book = &b
	}
	if u, ok := r.db.users[rec.UserID]; ok {
		rec.User = &u
	}
	return &rec
}

func (r *memRecords) FindActive(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	defer r.db.guard(r.inTx)()
	for _, rec := range r.db.records {
		if rec.BookID == bookID && rec.UserID == userID && rec.Status == models.StatusBorrowed {
			return &rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRecords) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	defer r.db.guard(r.inTx)()
	rec, ok := r.db.records[id]
	if !ok || rec.Status != models.StatusBorrowed {
		return false, nil
	}
	rec.Status = models.StatusReturned
	rec.ReturnDate = &at
	r.db.records[id] = rec
	return true, nil
}

func (r *memRecords) CountActiveByBook(ctx context.Context, bookID string) (int64, error) {
	defer r.db.guard(r.inTx)()
	var n int64
	for _, rec := range r.db.records {
		if rec.BookID == bookID && rec.Status == models.StatusBorrowed {
			n++
		}
	}
	return n, nil
}

func (r *memRecords) ListByUser(ctx context.Context, userID string) ([]models.BorrowingRecord, error) {
	defer r.db.guard(r.inTx)()
	var list []models.BorrowingRecord
	for _, rec := range r.db.records {
		if rec.UserID == userID {
			list = append(list, *r.join(rec))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BorrowDate.After(list[j].BorrowDate) })
	return list, nil
}
