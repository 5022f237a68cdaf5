package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

// Classify maps an error onto its HTTP status and the stable message shown to
// clients. Unknown errors are 500 and never leak their text.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authorized"
	case errors.Is(err, auth.ErrAccessDenied):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, auth.ErrSignatureInvalid),
		errors.Is(err, auth.ErrExpired),
		errors.Is(err, auth.ErrDecryption),
		errors.Is(err, auth.ErrMalformedEnvelope):
		return http.StatusUnauthorized, "not authorized, token failed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrAlreadyBorrowed),
		errors.Is(err, service.ErrNoActiveLoan):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateKey),
		errors.Is(err, service.ErrCopiesBelowOnLoan),
		errors.Is(err, service.ErrBookOnLoan):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// respondError writes the error envelope. Outside release mode the wrapped
// error is included as detail.
func respondError(c *gin.Context, err error) {
	status, msg := Classify(err)

	attrs := []any{"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err}
	if service.IsBusinessOutcome(err) {
		slog.Info("request rejected", attrs...)
	} else {
		slog.Error("request failed", attrs...)
	}

	body := gin.H{"success": false, "error": msg}
	if gin.Mode() != gin.ReleaseMode && msg != err.Error() {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
