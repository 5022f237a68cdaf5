package graphqlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/middleware"
	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	bookID   = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	memberID = "11111111-1111-4111-8111-111111111111"
)

type mockBorrows struct{ mock.Mock }

func (m *mockBorrows) Borrow(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowingRecord), args.Error(1)
}

func (m *mockBorrows) Return(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowingRecord), args.Error(1)
}

func (m *mockBorrows) History(ctx context.Context, userID string) ([]models.BorrowingRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BorrowingRecord), args.Error(1)
}

type mockBooks struct{ mock.Mock }

func (m *mockBooks) List(ctx context.Context, filter repository.BookFilter) (*service.BookPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(*service.BookPage), args.Error(1)
}

func (m *mockBooks) Get(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *mockBooks) Create(ctx context.Context, input service.BookInput) (*models.Book, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *mockBooks) Update(ctx context.Context, id string, patch service.BookPatch) (*models.Book, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *mockBooks) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) MostBorrowedBooks(ctx context.Context) ([]models.BookBorrowCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BookBorrowCount), args.Error(1)
}

func (m *mockReports) ActiveMembers(ctx context.Context) ([]models.ActiveMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ActiveMember), args.Error(1)
}

func (m *mockReports) Availability(ctx context.Context) (*models.AvailabilitySummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.AvailabilitySummary), args.Error(1)
}

func (m *mockReports) Summary(ctx context.Context) (*service.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).(*service.Report), args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuth) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

type fixture struct {
	router  *gin.Engine
	codec   *auth.TokenCodec
	books   *mockBooks
	borrows *mockBorrows
	reports *mockReports
	auth    *mockAuth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewTokenCodec("0123456789abcdef0123456789abcdef", "abcdefghijklmnopqrstuvwxyz012345", time.Hour)
	require.NoError(t, err)

	f := &fixture{codec: codec, books: new(mockBooks), borrows: new(mockBorrows), reports: new(mockReports), auth: new(mockAuth)}
	h, err := NewHandler(&Resolver{Books: f.books, Borrows: f.borrows, Reports: f.reports, Auth: f.auth}, time.Second)
	require.NoError(t, err)

	f.router = gin.New()
	f.router.POST("/graphql", middleware.SoftAuth(codec), h.Serve)
	return f
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (f *fixture) do(t *testing.T, header, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *fixture) bearer(t *testing.T, userID string, role auth.Role) string {
	t.Helper()
	token, err := f.codec.Issue(auth.SubjectClaims{UserID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

const mostBorrowedQuery = `{ mostBorrowedBooks { bookId title count } }`

func TestAdminQuery_AnonymousIsDenied(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "", mostBorrowedQuery, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "access denied", resp.Errors[0].Message)
	assert.Equal(t, "FORBIDDEN", resp.Errors[0].Extensions["code"])
	assert.Nil(t, resp.Data)
	f.reports.AssertNotCalled(t, "MostBorrowedBooks", mock.Anything)
}

func TestAdminQuery_InvalidTokenIsAnonymous(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "Bearer forged.token.value", mostBorrowedQuery, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "access denied", resp.Errors[0].Message)
}

func TestAdminQuery_MemberIsDenied(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, f.bearer(t, memberID, auth.RoleMember), mostBorrowedQuery, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "access denied", resp.Errors[0].Message)
}

func TestAdminQuery_Admin(t *testing.T) {
	f := newFixture(t)
	f.reports.On("MostBorrowedBooks", mock.Anything).Return([]models.BookBorrowCount{
		{BookID: bookID, Title: "Dune", Author: "Frank Herbert", Count: 7},
	}, nil)

	resp := f.do(t, f.bearer(t, "a-1", auth.RoleAdmin), mostBorrowedQuery, nil)

	require.Empty(t, resp.Errors)
	list := resp.Data["mostBorrowedBooks"].([]any)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "Dune", entry["title"])
	assert.Equal(t, float64(7), entry["count"])
}

func TestBooks_IsPublic(t *testing.T) {
	f := newFixture(t)
	f.books.On("List", mock.Anything, repository.BookFilter{Genre: "SF", Page: 1, Limit: 10}).Return(&service.BookPage{
		Books:       []models.Book{{ID: bookID, Title: "Dune", Author: "Frank Herbert", ISBN: "978-0441013593", Genre: "SF", Copies: 2, AvailableCopies: 1}},
		Total:       1,
		TotalPages:  1,
		CurrentPage: 1,
	}, nil)

	resp := f.do(t, "", `{ books(genre: "SF") { totalPages books { title availableCopies } } }`, nil)

	require.Empty(t, resp.Errors)
	page := resp.Data["books"].(map[string]any)
	assert.Equal(t, float64(1), page["totalPages"])
	first := page["books"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1), first["availableCopies"])
}

const borrowMutation = `mutation($id: ID!) {
  borrowBook(bookId: $id) { id status member { id name } book { title availableCopies } }
}`

func TestBorrowBook_Authenticated(t *testing.T) {
	f := newFixture(t)
	f.borrows.On("Borrow", mock.Anything, bookID, memberID).Return(&models.BorrowingRecord{
		ID:         "9f1c2d3e-4b5a-4c6d-8e7f-001122334455",
		BookID:     bookID,
		UserID:     memberID,
		Status:     models.StatusBorrowed,
		BorrowDate: time.Now().UTC(),
		Book:       &models.Book{ID: bookID, Title: "Dune", Copies: 2, AvailableCopies: 1},
		User:       &models.User{ID: memberID, Name: "Ada", Email: "ada@example.com", Role: auth.RoleMember},
	}, nil)

	resp := f.do(t, f.bearer(t, memberID, auth.RoleMember), borrowMutation, map[string]any{"id": bookID})

	require.Empty(t, resp.Errors)
	rec := resp.Data["borrowBook"].(map[string]any)
	assert.Equal(t, "Borrowed", rec["status"])
	assert.Equal(t, "Ada", rec["member"].(map[string]any)["name"])
	assert.Equal(t, float64(1), rec["book"].(map[string]any)["availableCopies"])
	f.borrows.AssertExpectations(t)
}

func TestBorrowBook_Anonymous(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "", borrowMutation, map[string]any{"id": bookID})

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "not authorized", resp.Errors[0].Message)
	assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Extensions["code"])
	f.borrows.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrowBook_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.borrows.On("Borrow", mock.Anything, bookID, memberID).Return(nil, service.ErrUnavailable)

	resp := f.do(t, f.bearer(t, memberID, auth.RoleMember), borrowMutation, map[string]any{"id": bookID})

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "book not available", resp.Errors[0].Message)
	assert.Equal(t, "BAD_REQUEST", resp.Errors[0].Extensions["code"])
}

func TestCreateBook_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	mutation := `mutation {
  createBook(bookInput: {title: "Dune", author: "Frank Herbert", isbn: "978-0441013593", publicationDate: "1965-08-01", genre: "SF", copies: 2}) { id availableCopies }
}`

	resp := f.do(t, f.bearer(t, memberID, auth.RoleMember), mutation, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "access denied", resp.Errors[0].Message)

	f.books.On("Create", mock.Anything, mock.MatchedBy(func(in service.BookInput) bool {
		return in.ISBN == "978-0441013593" && in.Copies == 2
	})).Return(&models.Book{ID: bookID, Copies: 2, AvailableCopies: 2}, nil)

	resp = f.do(t, f.bearer(t, "a-1", auth.RoleAdmin), mutation, nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, float64(2), resp.Data["createBook"].(map[string]any)["availableCopies"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Login", mock.Anything, "ada@example.com", "password123").Return(&service.LoginResult{
		Token:     "sealed",
		User:      &models.User{ID: memberID},
		ExpiresIn: time.Hour,
	}, nil)

	resp := f.do(t, "", `mutation { login(email: "ada@example.com", password: "password123") { userId token tokenExpiration } }`, nil)

	require.Empty(t, resp.Errors)
	data := resp.Data["login"].(map[string]any)
	assert.Equal(t, memberID, data["userId"])
	assert.Equal(t, float64(1), data["tokenExpiration"])
}

func TestServe_RejectsEmptyBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
