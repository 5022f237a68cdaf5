package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/models"
	"nalanda/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

const minPasswordLength = 8

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token     string
	User      *models.User
	ExpiresIn time.Duration
}

type AuthService interface {
	// Register always creates a Member.
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	// CreateAdmin is only reachable from the operator CLI.
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type authService struct {
	userRepo repository.UserRepository
	codec    *auth.TokenCodec
	logger   *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, codec *auth.TokenCodec, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{userRepo: userRepo, codec: codec, logger: logger}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, auth.RoleMember)
}

func (s *authService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.create(ctx, name, email, password, auth.RoleAdmin)
}

func (s *authService) create(ctx context.Context, name, email, password string, role auth.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, validationError("name required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("email is invalid")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateKey
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "check email")
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, translate(err, "hash password")
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "create user")
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login issues a sealed token. Unknown email and wrong password are
// indistinguishable to the caller, timing included.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, translate(err, "find user")
		}
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(auth.SubjectClaims{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, translate(err, "issue token")
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("record last login failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	return &LoginResult{Token: token, User: user, ExpiresIn: s.codec.TTL()}, nil
}
