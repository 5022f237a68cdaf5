package dto

import (
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/models"
)

// MemberResponse is the public view of a user. The stored password hash and
// login timestamps never leave the service.
type MemberResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// BorrowRecordResponse renames the stored user relation to member.
type BorrowRecordResponse struct {
	ID         string          `json:"id"`
	BookID     string          `json:"bookId"`
	MemberID   string          `json:"memberId"`
	Status     string          `json:"status"`
	BorrowDate time.Time       `json:"borrowDate"`
	ReturnDate *time.Time      `json:"returnDate"`
	Book       *BookResponse   `json:"book,omitempty"`
	Member     *MemberResponse `json:"member,omitempty"`
}

type BorrowResponse struct {
	Message string               `json:"message"`
	Record  BorrowRecordResponse `json:"record"`
}

func FromUserModel(u models.User) MemberResponse {
	return MemberResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func FromRecordModel(r models.BorrowingRecord) BorrowRecordResponse {
	resp := BorrowRecordResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		MemberID:   r.UserID,
		Status:     string(r.Status),
		BorrowDate: r.BorrowDate,
		ReturnDate: r.ReturnDate,
	}
	if r.Book != nil {
		book := FromBookModel(*r.Book)
		resp.Book = &book
	}
	if r.User != nil {
		member := FromUserModel(*r.User)
		resp.Member = &member
	}
	return resp
}

func FromRecordModels(records []models.BorrowingRecord) []BorrowRecordResponse {
	out := make([]BorrowRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecordModel(r))
	}
	return out
}
