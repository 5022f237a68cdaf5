package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "Borrowed"
	StatusReturned BorrowStatus = "Returned"
)

// BorrowingRecord moves Borrowed -> Returned exactly once. The partial unique
// index keeps at most one Borrowed record per (book, user).
type BorrowingRecord struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	BookID     string       `gorm:"type:uuid;not null;index;index:idx_active_loan,unique,where:status = 'Borrowed'" json:"book_id"`
	UserID     string       `gorm:"type:uuid;not null;index;index:idx_active_loan,unique,where:status = 'Borrowed'" json:"user_id"`
	Status     BorrowStatus `gorm:"type:varchar(16);not null;default:'Borrowed'" json:"status"`
	BorrowDate time.Time    `gorm:"not null;index" json:"borrow_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty"`

	// Associations
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *BorrowingRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (BorrowingRecord) TableName() string {
	return "borrowing_records"
}
