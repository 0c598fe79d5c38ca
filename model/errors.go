package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the router and the resolver.
type ErrorKind string

const (
	KindAuthInvalid         ErrorKind = "auth_invalid"
	KindRateLimited         ErrorKind = "rate_limited"
	KindUnreachable         ErrorKind = "unreachable"
	KindNoCompatibleModel   ErrorKind = "no_compatible_model"
	KindUnknownBackend      ErrorKind = "unknown_backend"
	KindDataSourceExhausted ErrorKind = "data_source_exhausted"
	KindUnknown             ErrorKind = "unknown"
)

// Error is the normalized error returned across the router and resolver
// boundaries. Message is user-facing; Err keeps the backend-native cause.
type Error struct {
	Kind    ErrorKind
	Backend string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error for the given backend.
func NewError(kind ErrorKind, backend, message string, cause error) *Error {
	return &Error{Kind: kind, Backend: backend, Message: message, Err: cause}
}

// KindOf returns the ErrorKind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
