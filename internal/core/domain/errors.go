package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCommand indicates an edit command kind outside the closed set.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoDocument indicates a session has no open document.
	ErrNoDocument = errors.New("session has no open document")

	// ErrClosed indicates the component has been shut down.
	ErrClosed = errors.New("closed")
)
