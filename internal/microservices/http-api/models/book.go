package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book.AvailableCopies is derived: Copies minus the number of Borrowed records.
type Book struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Author          string    `gorm:"not null;index" json:"author"`
	ISBN            string    `gorm:"column:isbn;uniqueIndex;not null" json:"isbn"`
	PublicationDate time.Time `gorm:"not null" json:"publication_date"`
	Genre           string    `gorm:"not null;index" json:"genre"`
	Copies          int       `gorm:"not null;check:chk_books_copies,copies >= 0" json:"copies"`
	AvailableCopies int       `gorm:"not null;check:chk_books_available,available_copies >= 0 AND available_copies <= copies" json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
