package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable classification of an application
// error. Handlers map kinds to HTTP status codes; services never touch
// HTTP status codes directly.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindExpired      Kind = "EXPIRED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a kind, a human-readable message, an optional short
// reason code for API responses, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, reason, message string) error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Wrap(kind Kind, reason, message string, cause error) error {
	return &Error{Kind: kind, Reason: reason, Message: message, Cause: cause}
}

func Validation(reason, msg string) error { return New(KindValidation, reason, msg) }
func NotFound(reason, msg string) error   { return New(KindNotFound, reason, msg) }
func Conflict(reason, msg string) error   { return New(KindConflict, reason, msg) }
func Expired(reason, msg string) error    { return New(KindExpired, reason, msg) }
func Unauthorized(reason, msg string) error {
	return New(KindUnauthorized, reason, msg)
}
func Internal(msg string, cause error) error {
	return Wrap(KindInternal, "internal", msg, cause)
}

// KindOf returns the kind of err, or KindInternal for errors that did
// not originate in this package.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ReasonOf returns the short reason code of err, or "internal".
func ReasonOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Reason != "" {
		return ae.Reason
	}
	return "internal"
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
