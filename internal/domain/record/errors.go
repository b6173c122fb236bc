package record

import "errors"

var (
	// ErrRecordNotFound indicates the record doesn't exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidTransition indicates the record's status does not allow the operation.
	ErrInvalidTransition = errors.New("invalid record state transition")
	// ErrInvalidInput indicates the record failed validation.
	ErrInvalidInput = errors.New("invalid record input")
	// ErrForbidden indicates the caller's scope lacks the capability.
	ErrForbidden = errors.New("operation not permitted for role")
	// ErrOutOfScope indicates the record belongs to a project outside the caller's scope.
	ErrOutOfScope = errors.New("record outside of scope")
	// ErrUnknownModule indicates no module is registered under the name.
	ErrUnknownModule = errors.New("unknown module")
)
