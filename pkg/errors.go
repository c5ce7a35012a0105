// Package pkg holds the utilities shared across the project.
// This file defines the domain-level errors.
//
// Errors are plain sentinel values created with errors.New, so callers
// compare by identity instead of by string:
//
//	if errors.Is(err, pkg.ErrMissingFields) { ... }
//
// Services wrap them with context using fmt.Errorf("%w: ...") and the
// handler layer maps them to HTTP status codes (see response.go).
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level errors. Their messages are safe to show to a client.
var (
	ErrMissingFields      = errors.New("missing fields")
	ErrDuplicateEmail     = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSigningFailure     = errors.New("could not generate token")
	ErrChatTokenFailure   = errors.New("could not generate chat token")
	ErrInternal           = errors.New("internal error")

	// Storage-level errors, translated by services before they reach a handler.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Transport-level errors.
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("too many requests")
)

// StatusError carries an upstream HTTP status alongside a domain error.
//
// The remote chat service is the only producer: when it answers with a
// non-2xx status, that status is passed through to our caller while the
// message stays the generic one of the wrapped sentinel.
type StatusError struct {
	Status int
	Err    error
}

// NewStatusError wraps err with an upstream status code.
func NewStatusError(status int, err error) *StatusError {
	return &StatusError{Status: status, Err: err}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }
