package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure produced by the core wraps exactly one of
// these sentinels so callers can classify it with errors.Is without
// parsing messages.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrConfiguration = errors.New("configuration error")
	ErrInternal      = errors.New("internal error")
)

// Error pairs a stable kind with a human-readable message. The message is
// what boundary layers render; the kind is what they branch on.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

func Unauthorizedf(format string, args ...any) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

func NotFoundError(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func Configuration(msg string) error { return &Error{Kind: ErrConfiguration, Message: msg} }

// Internal tags an unexpected infrastructure failure. The cause is kept in
// the chain for logging but the rendered message stays generic.
func Internal(op string, cause error) error {
	return &Error{Kind: ErrInternal, Message: fmt.Sprintf("%s: %v", op, cause)}
}
