package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/repository"
	"github.com/rpggio/jobsite/internal/scope"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "missing or invalid credentials", RecoveryHint: "Send a bearer token"}
	case errors.Is(err, scope.ErrUnknownRole):
		return &APIError{Code: "UNKNOWN_ROLE", Message: err.Error(), RecoveryHint: "Use executive, project-executive or project-manager"}
	case errors.Is(err, record.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: err.Error(), RecoveryHint: "Call get_scope to see the role's capabilities"}
	case errors.Is(err, record.ErrOutOfScope):
		return &APIError{Code: "OUT_OF_SCOPE", Message: "record belongs to a project outside the role's scope"}
	case errors.Is(err, record.ErrRecordNotFound), errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "RECORD_NOT_FOUND", Message: "record not found", RecoveryHint: "Check ID spelling"}
	case errors.Is(err, record.ErrUnknownModule):
		return &APIError{Code: "UNKNOWN_MODULE", Message: err.Error(), RecoveryHint: "Call list_modules"}
	case errors.Is(err, record.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: err.Error(), RecoveryHint: "Check the record's status"}
	case errors.Is(err, record.ErrInvalidInput), errors.Is(err, repository.ErrForeignKeyViolation):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "record already exists"}
	case errors.Is(err, export.ErrUnsupportedFormat):
		return &APIError{Code: "UNSUPPORTED_FORMAT", Message: err.Error(), RecoveryHint: "Use pdf, excel or csv"}
	case errors.Is(err, export.ErrWriterFailed):
		return &APIError{Code: "EXPORT_FAILED", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: "CANCELED", Message: err.Error()}
	default:
		return nil
	}
}
