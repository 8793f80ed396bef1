package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a backend reply that decoded incorrectly or
// is missing expected fields. Callers treat the accompanying snapshot as
// "not authenticated, auth enabled".
var ErrMalformedResponse = errors.New("malformed backend response")

// NetworkError wraps a transport-level failure talking to the backend.
// It is always propagated to the caller; nothing in this package maps it
// to a permissive default.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s failed (status %d): %s", e.Op, e.Code, e.Body)
}
