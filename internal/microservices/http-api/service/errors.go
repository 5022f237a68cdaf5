package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrUnavailable        = errors.New("book not available")
	ErrAlreadyBorrowed    = errors.New("you already borrowed this book")
	ErrNoActiveLoan       = errors.New("no active borrowing record found")
	ErrDuplicateKey       = errors.New("duplicate field value entered")
	ErrCopiesBelowOnLoan  = errors.New("copies cannot be lower than the number of copies on loan")
	ErrBookOnLoan         = errors.New("book has copies on loan")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsBusinessOutcome reports errors that are expected traffic rather than failures.
func IsBusinessOutcome(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrAlreadyBorrowed) ||
		errors.Is(err, ErrNoActiveLoan)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// validID rejects anything that is not a UUID; such ids can never match a row.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// translate maps store errors onto the taxonomy and wraps the rest with op.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case isTaxonomy(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrUnavailable, ErrAlreadyBorrowed, ErrNoActiveLoan,
		ErrDuplicateKey, ErrCopiesBelowOnLoan, ErrBookOnLoan, ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
