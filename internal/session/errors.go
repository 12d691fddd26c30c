package session

import "errors"

var (
	// ErrNotFound indicates the session ID does not exist in the store.
	ErrNotFound = errors.New("session not found")

	// ErrSuperseded indicates a guarded update was rejected because the
	// session's generation sequence has moved past the caller's.
	ErrSuperseded = errors.New("generation superseded")
)
