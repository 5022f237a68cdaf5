package handler

import (
	"context"
	"testing"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBorrowService struct {
	mock.Mock
}

func (m *MockBorrowService) Borrow(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowingRecord), args.Error(1)
}

func (m *MockBorrowService) Return(ctx context.Context, bookID, userID string) (*models.BorrowingRecord, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowingRecord), args.Error(1)
}

func (m *MockBorrowService) History(ctx context.Context, userID string) ([]models.BorrowingRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BorrowingRecord), args.Error(1)
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) List(ctx context.Context, filter repository.BookFilter) (*service.BookPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookPage), args.Error(1)
}

func (m *MockBookService) Get(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Create(ctx context.Context, input service.BookInput) (*models.Book, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, id string, patch service.BookPatch) (*models.Book, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) MostBorrowedBooks(ctx context.Context) ([]models.BookBorrowCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BookBorrowCount), args.Error(1)
}

func (m *MockReportService) ActiveMembers(ctx context.Context) ([]models.ActiveMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ActiveMember), args.Error(1)
}

func (m *MockReportService) Availability(ctx context.Context) (*models.AvailabilitySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilitySummary), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context) (*service.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec("0123456789abcdef0123456789abcdef", "abcdefghijklmnopqrstuvwxyz012345", time.Hour)
	require.NoError(t, err)
	return codec
}

func bearer(t *testing.T, codec *auth.TokenCodec, userID string, role auth.Role) string {
	t.Helper()
	token, err := codec.Issue(auth.SubjectClaims{UserID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}
