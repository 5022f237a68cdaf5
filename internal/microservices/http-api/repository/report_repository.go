package repository

import (
	"context"
	"fmt"

	"nalanda/internal/microservices/http-api/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository runs read-only aggregates straight on the pgx pool.
type ReportRepository interface {
	MostBorrowedBooks(ctx context.Context, limit int) ([]models.BookBorrowCount, error)
	ActiveMembers(ctx context.Context, limit int) ([]models.ActiveMember, error)
	Availability(ctx context.Context) (*models.AvailabilitySummary, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const mostBorrowedSQL = `
SELECT b.id::text, b.title, b.author, COUNT(r.id) AS borrow_count
FROM borrowing_records r
JOIN books b ON b.id = r.book_id
GROUP BY b.id, b.title, b.author
ORDER BY borrow_count DESC, b.title
LIMIT $1`

func (r *reportRepository) MostBorrowedBooks(ctx context.Context, limit int) ([]models.BookBorrowCount, error) {
	rows, err := r.pool.Query(ctx, mostBorrowedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("most borrowed books: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BookBorrowCount, error) {
		var b models.BookBorrowCount
		err := row.Scan(&b.BookID, &b.Title, &b.Author, &b.Count)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan most borrowed books: %w", err)
	}
	return list, nil
}

const activeMembersSQL = `
SELECT u.id::text, u.name, u.email, COUNT(r.id) AS borrow_count
FROM borrowing_records r
JOIN users u ON u.id = r.user_id
GROUP BY u.id, u.name, u.email
ORDER BY borrow_count DESC, u.name
LIMIT $1`

func (r *reportRepository) ActiveMembers(ctx context.Context, limit int) ([]models.ActiveMember, error) {
	rows, err := r.pool.Query(ctx, activeMembersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("active members: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActiveMember, error) {
		var m models.ActiveMember
		err := row.Scan(&m.UserID, &m.Name, &m.Email, &m.BorrowCount)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan active members: %w", err)
	}
	return list, nil
}

const availabilitySQL = `
SELECT COALESCE(SUM(copies), 0)::bigint, COALESCE(SUM(available_copies), 0)::bigint, COUNT(*)
FROM books`

func (r *reportRepository) Availability(ctx context.Context) (*models.AvailabilitySummary, error) {
	var s models.AvailabilitySummary
	if err := r.pool.QueryRow(ctx, availabilitySQL).Scan(&s.TotalBooks, &s.TotalAvailable, &s.TotalTitles); err != nil {
		return nil, fmt.Errorf("availability summary: %w", err)
	}
	s.TotalBorrowed = s.TotalBooks - s.TotalAvailable
	return &s, nil
}
