package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are bound to one transaction.
type TxRepositories struct {
	Books   BookRepository
	Records BorrowingRecordRepository
}

// Store runs fn inside a single database transaction. Returning an error from
// fn rolls everything back.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx TxRepositories) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx TxRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Books:   NewBookRepository(tx),
			Records: NewBorrowingRecordRepository(tx),
		})
	})
}
