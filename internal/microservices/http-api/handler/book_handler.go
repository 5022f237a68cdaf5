package handler

import (
	"context"
	"net/http"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/dto"
	"nalanda/internal/microservices/http-api/middleware"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	books   service.BookService
	reports service.ReportService
	timeout time.Duration
}

func NewBookHandler(books service.BookService, reports service.ReportService, timeout time.Duration) *BookHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &BookHandler{books: books, reports: reports, timeout: timeout}
}

// RegisterRoutes mounts the public catalog routes and the Admin-only
// lifecycle and report routes behind authGate.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authGate gin.HandlerFunc) {
	rg.GET("", h.List)

	admin := rg.Group("", authGate, middleware.RequireRole(auth.RoleAdmin))
	admin.GET("/reports", h.Reports)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)

	rg.GET("/:id", h.Get)
}

// List books with optional genre/author filters
func (h *BookHandler) List(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	page, err := h.books.List(ctx, repository.BookFilter{
		Genre:  q.Genre,
		Author: q.Author,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBookPage(page))
}

func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.books.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBookModel(*book))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.ToInput()
	if err != nil {
		badRequest(c, "publicationDate must be YYYY-MM-DD or RFC 3339")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.books.Create(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromBookModel(*book))
}

func (h *BookHandler) Update(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		badRequest(c, "publicationDate must be YYYY-MM-DD or RFC 3339")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.books.Update(ctx, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBookModel(*book))
}

func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.books.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// Reports returns the cached aggregates
func (h *BookHandler) Reports(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	report, err := h.reports.Summary(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
