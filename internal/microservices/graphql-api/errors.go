package graphqlapi

import (
	"fmt"
	"net/http"

	"nalanda/internal/microservices/http-api/handler"
	"nalanda/internal/microservices/http-api/service"

	"github.com/graphql-go/graphql"
)

var invalidDate = fmt.Errorf("%w: publicationDate must be YYYY-MM-DD or RFC 3339", service.ErrValidation)

// fieldError is what clients see in the errors array. It carries only the
// stable message and a code; the wrapped cause stays in the log.
type fieldError struct {
	message string
	code    string
}

func (e *fieldError) Error() string { return e.message }

func (e *fieldError) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

var codes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusUnauthorized:        "UNAUTHENTICATED",
	http.StatusForbidden:           "FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusConflict:            "CONFLICT",
	http.StatusInternalServerError: "INTERNAL_SERVER_ERROR",
}

func (r *Resolver) fail(p graphql.ResolveParams, err error) error {
	status, msg := handler.Classify(err)

	attrs := []any{"field", p.Info.FieldName, "status", status, "error", err}
	if service.IsBusinessOutcome(err) {
		r.logger().Info("graphql operation rejected", attrs...)
	} else {
		r.logger().Error("graphql operation failed", attrs...)
	}

	return &fieldError{message: msg, code: codes[status]}
}
