package dto

import (
	"time"

	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/service"
)

const dateLayout = "2006-01-02"

// CreateBookRequest: payload to add a book to the catalog
type CreateBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	PublicationDate string `json:"publicationDate" binding:"required"`
	Genre           string `json:"genre" binding:"required"`
	Copies          *int   `json:"copies" binding:"required,min=0"`
}

// UpdateBookRequest: partial update; availableCopies is derived, never accepted.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	PublicationDate *string `json:"publicationDate"`
	Genre           *string `json:"genre"`
	Copies          *int    `json:"copies" binding:"omitempty,min=0"`
}

// ListBooksQuery: query string for GET /books
type ListBooksQuery struct {
	Genre  string `form:"genre"`
	Author string `form:"author"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
}

type BookResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationDate string    `json:"publicationDate"`
	Genre           string    `json:"genre"`
	Copies          int       `json:"copies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type BookListResponse struct {
	Books       []BookResponse `json:"books"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ToInput converts a create request into service input.
func (r CreateBookRequest) ToInput() (service.BookInput, error) {
	published, err := ParseDate(r.PublicationDate)
	if err != nil {
		return service.BookInput{}, err
	}
	copies := 0
	if r.Copies != nil {
		copies = *r.Copies
	}
	return service.BookInput{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationDate: published,
		Genre:           r.Genre,
		Copies:          copies,
	}, nil
}

// ToPatch converts an update request into a service patch.
func (r UpdateBookRequest) ToPatch() (service.BookPatch, error) {
	patch := service.BookPatch{
		Title:  r.Title,
		Author: r.Author,
		ISBN:   r.ISBN,
		Genre:  r.Genre,
		Copies: r.Copies,
	}
	if r.PublicationDate != nil {
		published, err := ParseDate(*r.PublicationDate)
		if err != nil {
			return service.BookPatch{}, err
		}
		patch.PublicationDate = &published
	}
	return patch, nil
}

func FromBookModel(b models.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate.Format(dateLayout),
		Genre:           b.Genre,
		Copies:          b.Copies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func FromBookPage(page *service.BookPage) BookListResponse {
	books := make([]BookResponse, 0, len(page.Books))
	for _, b := range page.Books {
		books = append(books, FromBookModel(b))
	}
	return BookListResponse{
		Books:       books,
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}
