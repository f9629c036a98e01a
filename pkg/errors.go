// Package pkg holds utilities shared across the registry backend.
// This file defines the domain-level errors.
//
// Errors are plain sentinel values created with errors.New, so callers
// compare by identity instead of by message:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Services wrap them with context (fmt.Errorf("%w: ...", pkg.ErrBadRequest))
// and the response helpers map them to HTTP status codes.
package pkg

import "errors"

// Domain-level errors. The handler layer maps these to HTTP status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
