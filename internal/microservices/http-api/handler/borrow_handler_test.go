package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/middleware"
	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testBookID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testUserID = "11111111-1111-4111-8111-111111111111"
)

func setupBorrowRouter(t *testing.T) (*gin.Engine, *MockBorrowService, *auth.TokenCodec) {
	t.Helper()
	codec := newCodec(t)
	svc := new(MockBorrowService)
	router := setupRouter()
	NewBorrowHandler(svc, time.Second).RegisterRoutes(router.Group("/api/borrow", middleware.RequireAuth(codec)))
	return router, svc, codec
}

func sampleRecord() *models.BorrowingRecord {
	return &models.BorrowingRecord{
		ID:         "9f1c2d3e-4b5a-4c6d-8e7f-001122334455",
		BookID:     testBookID,
		UserID:     testUserID,
		Status:     models.StatusBorrowed,
		BorrowDate: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Book:       &models.Book{ID: testBookID, Title: "Dune", Copies: 2, AvailableCopies: 1},
		User:       &models.User{ID: testUserID, Name: "Ada", Email: "ada@example.com", Password: "$2a$10$secret", Role: auth.RoleMember},
	}
}

func TestBorrowHandler_Borrow(t *testing.T) {
	router, svc, codec := setupBorrowRouter(t)
	svc.On("Borrow", mock.Anything, testBookID, testUserID).Return(sampleRecord(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/borrow/"+testBookID, nil)
	req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Book borrowed successfully", body["message"])

	record := body["record"].(map[string]any)
	assert.Equal(t, "Borrowed", record["status"])
	assert.NotContains(t, record, "user")
	member := record["member"].(map[string]any)
	assert.Equal(t, "Ada", member["name"])
	assert.NotContains(t, member, "password")
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")
	svc.AssertExpectations(t)
}

func TestBorrowHandler_RequiresToken(t *testing.T) {
	router, svc, _ := setupBorrowRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/borrow/"+testBookID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrowHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"NotFound", service.ErrNotFound, http.StatusNotFound, "resource not found"},
		{"Unavailable", service.ErrUnavailable, http.StatusBadRequest, "book not available"},
		{"AlreadyBorrowed", service.ErrAlreadyBorrowed, http.StatusBadRequest, "you already borrowed this book"},
		{"Internal", errors.New("borrow book: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, svc, codec := setupBorrowRouter(t)
			svc.On("Borrow", mock.Anything, testBookID, testUserID).Return(nil, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/api/borrow/"+testBookID, nil)
			req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestBorrowHandler_InternalDetailHiddenInRelease(t *testing.T) {
	router, svc, codec := setupBorrowRouter(t)
	svc.On("Borrow", mock.Anything, testBookID, testUserID).Return(nil, errors.New("pq: password authentication failed"))

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodPost, "/api/borrow/"+testBookID, nil)
	req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.NotContains(t, w.Body.String(), "detail")
}

func TestBorrowHandler_Return(t *testing.T) {
	router, svc, codec := setupBorrowRouter(t)
	returned := sampleRecord()
	at := returned.BorrowDate.Add(48 * time.Hour)
	returned.Status = models.StatusReturned
	returned.ReturnDate = &at
	svc.On("Return", mock.Anything, testBookID, testUserID).Return(returned, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/borrow/return/"+testBookID, nil)
	req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Book returned successfully", body["message"])
	assert.Equal(t, "Returned", body["record"].(map[string]any)["status"])
}

func TestBorrowHandler_ReturnWithoutLoan(t *testing.T) {
	router, svc, codec := setupBorrowRouter(t)
	svc.On("Return", mock.Anything, testBookID, testUserID).Return(nil, service.ErrNoActiveLoan)

	req := httptest.NewRequest(http.MethodPost, "/api/borrow/return/"+testBookID, nil)
	req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no active borrowing record found")
}

func TestBorrowHandler_History(t *testing.T) {
	router, svc, codec := setupBorrowRouter(t)
	svc.On("History", mock.Anything, testUserID).Return([]models.BorrowingRecord{*sampleRecord()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/borrow/history", nil)
	req.Header.Set("Authorization", bearer(t, codec, testUserID, auth.RoleMember))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, testUserID, body[0]["memberId"])
}
