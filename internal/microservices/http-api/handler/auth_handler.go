package handler

import (
	"context"
	"net/http"
	"time"

	"nalanda/internal/microservices/http-api/dto"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	timeout     time.Duration
}

func NewAuthHandler(authService service.AuthService, timeout time.Duration) *AuthHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &AuthHandler{authService: authService, timeout: timeout}
}

// RegisterRoutes mounts register and login; loginGuard throttles login attempts.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, loginGuard ...gin.HandlerFunc) {
	rg.POST("/register", h.Register)
	rg.POST("/login", append(loginGuard, h.Login)...)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		Member:  dto.FromUserModel(*user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token:           result.Token,
		UserID:          result.User.ID,
		TokenExpiration: int(result.ExpiresIn / time.Hour),
	})
}
