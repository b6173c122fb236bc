package scope

import "errors"

var (
	// ErrUnknownRole indicates a role string outside the known set.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidPolicy indicates the capability policy could not be built.
	ErrInvalidPolicy = errors.New("invalid capability policy")
)
