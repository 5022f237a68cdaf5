package repository

import (
	"context"
	"fmt"
	"time"

	"nalanda/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type BorrowingRecordRepository interface {
	Create(ctx context.Context, record *models.BorrowingRecord) error
	// FindByID loads the record together with its Book and User.
	FindByID(ctx context.Context, id string) (*models.BorrowingRecord, error)
	FindActive(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error)
	// MarkReturned flips a Borrowed record to Returned. false means it was not Borrowed.
	MarkReturned(ctx context.Context, id string, at time.Time) (bool, error)
	CountActiveByBook(ctx context.Context, bookID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.BorrowingRecord, error)
}

type borrowingRecordRepository struct {
	db *gorm.DB
}

func NewBorrowingRecordRepository(db *gorm.DB) BorrowingRecordRepository {
	return &borrowingRecordRepository{db: db}
}

func (r *borrowingRecordRepository) Create(ctx context.Context, record *models.BorrowingRecord) error {
	if err := r.db.WithContext(ctx).Omit("Book", "User").Create(record).Error; err != nil {
		return fmt.Errorf("create borrowing record: %w", err)
	}
	return nil
}

func (r *borrowingRecordRepository) FindByID(ctx context.Context, id string) (*models.BorrowingRecord, error) {
	var rec models.BorrowingRecord
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *borrowingRecordRepository) FindActive(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	var rec models.BorrowingRecord
	if err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ? AND status = ?", bookID, userID, models.StatusBorrowed).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *borrowingRecordRepository) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("id = ? AND status = ?", id, models.StatusBorrowed).
		UpdateColumns(map[string]any{
			"status":      models.StatusReturned,
			"return_date": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("mark record returned: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *borrowingRecordRepository) CountActiveByBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("book_id = ? AND status = ?", bookID, models.StatusBorrowed).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	return count, nil
}

func (r *borrowingRecordRepository) ListByUser(ctx context.Context, userID string) ([]models.BorrowingRecord, error) {
	var records []models.BorrowingRecord
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("user_id = ?", userID).
		Order("borrow_date DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list borrowing history: %w", err)
	}
	return records, nil
}
