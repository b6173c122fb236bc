package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/repository"
	"github.com/rpggio/jobsite/internal/scope"
)

// Error codes returned in ErrorBody.Code.
const (
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeOutOfScope        = "out_of_scope"
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeUnsupportedFormat = "unsupported_format"
	CodeExportFailed      = "export_failed"
	CodeCanceled          = "canceled"
	CodeInternal          = "internal"
)

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// MapError maps domain errors to an HTTP status and error code.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, scope.ErrUnknownRole):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, record.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, record.ErrOutOfScope):
		return http.StatusForbidden, CodeOutOfScope
	case errors.Is(err, record.ErrRecordNotFound), errors.Is(err, record.ErrUnknownModule),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, record.ErrInvalidInput), errors.Is(err, repository.ErrForeignKeyViolation):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, record.ErrInvalidTransition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, CodeUnsupportedFormat
	case errors.Is(err, export.ErrWriterFailed):
		return http.StatusInternalServerError, CodeExportFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeCanceled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := MapError(err)
	message := err.Error()
	if code == CodeInternal {
		message = "internal error"
	}
	requestID, _ := RequestIDFromContext(r.Context())
	writeJSON(w, status, ErrorBody{Code: code, Message: message, RequestID: requestID})
}
