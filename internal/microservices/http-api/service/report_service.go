package service

import (
	"context"
	"log/slog"

	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"
)

const (
	mostBorrowedLimit  = 10
	activeMembersLimit = 5
)

type Report struct {
	MostBorrowedBooks []models.BookBorrowCount   `json:"mostBorrowedBooks"`
	ActiveMembers     []models.ActiveMember      `json:"activeMembers"`
	Availability      models.AvailabilitySummary `json:"availability"`
}

// ReportService reads aggregates through the cache. Callers check the Admin
// role before calling.
type ReportService interface {
	MostBorrowedBooks(ctx context.Context) ([]models.BookBorrowCount, error)
	ActiveMembers(ctx context.Context) ([]models.ActiveMember, error)
	Availability(ctx context.Context) (*models.AvailabilitySummary, error)
	Summary(ctx context.Context) (*Report, error)
}

type reportService struct {
	repo   repository.ReportRepository
	cache  repository.ReportCache
	logger *slog.Logger
}

func NewReportService(repo repository.ReportRepository, cache repository.ReportCache, logger *slog.Logger) ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportService{repo: repo, cache: cache, logger: logger}
}

func (s *reportService) MostBorrowedBooks(ctx context.Context) ([]models.BookBorrowCount, error) {
	return cached(ctx, s, "most_borrowed", func() ([]models.BookBorrowCount, error) {
		return s.repo.MostBorrowedBooks(ctx, mostBorrowedLimit)
	})
}

func (s *reportService) ActiveMembers(ctx context.Context) ([]models.ActiveMember, error) {
	return cached(ctx, s, "active_members", func() ([]models.ActiveMember, error) {
		return s.repo.ActiveMembers(ctx, activeMembersLimit)
	})
}

func (s *reportService) Availability(ctx context.Context) (*models.AvailabilitySummary, error) {
	return cached(ctx, s, "availability", func() (*models.AvailabilitySummary, error) {
		return s.repo.Availability(ctx)
	})
}

func (s *reportService) Summary(ctx context.Context) (*Report, error) {
	top, err := s.MostBorrowedBooks(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.ActiveMembers(ctx)
	if err != nil {
		return nil, err
	}
	availability, err := s.Availability(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{MostBorrowedBooks: top, ActiveMembers: members, Availability: *availability}, nil
}

// cached serves name from the cache when present. Cache errors degrade to a
// direct read and are only logged.
func cached[T any](ctx context.Context, s *reportService, name string, load func() (T, error)) (T, error) {
	var value T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, name, &value)
		if err != nil {
			s.logger.Warn("report cache read failed", "report", name, "error", err)
		} else if hit {
			return value, nil
		}
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, translate(err, "report "+name)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, value); err != nil {
			s.logger.Warn("report cache write failed", "report", name, "error", err)
		}
	}
	return value, nil
}
