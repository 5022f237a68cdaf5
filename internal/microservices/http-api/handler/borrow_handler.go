package handler

import (
	"context"
	"net/http"
	"time"

	"nalanda/internal/microservices/http-api/dto"
	"nalanda/internal/microservices/http-api/middleware"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultRequestTimeout = 5 * time.Second

type BorrowHandler struct {
	svc     service.BorrowService
	timeout time.Duration
}

func NewBorrowHandler(svc service.BorrowService, timeout time.Duration) *BorrowHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &BorrowHandler{svc: svc, timeout: timeout}
}

// RegisterRoutes expects rg to be behind middleware.RequireAuth.
func (h *BorrowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:bookId", h.Borrow)
	rg.POST("/return/:bookId", h.Return)
	rg.GET("/history", h.History)
}

// Borrow lends one copy of the book to the caller
func (h *BorrowHandler) Borrow(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	record, err := h.svc.Borrow(ctx, c.Param("bookId"), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BorrowResponse{
		Message: "Book borrowed successfully",
		Record:  dto.FromRecordModel(*record),
	})
}

// Return closes the caller's active loan on the book
func (h *BorrowHandler) Return(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	record, err := h.svc.Return(ctx, c.Param("bookId"), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BorrowResponse{
		Message: "Book returned successfully",
		Record:  dto.FromRecordModel(*record),
	})
}

// History lists the caller's loans, newest first
func (h *BorrowHandler) History(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	records, err := h.svc.History(ctx, principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRecordModels(records))
}
