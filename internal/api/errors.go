package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned by any authenticated call that came back
// 401 or 403. By the time a caller sees it the stored credentials have
// already been cleared; the only sensible reaction is to show the login
// screen again.
var ErrSessionExpired = errors.New("session expired")

// ErrNotEnrolled is returned when a learning-flow call requires an
// enrollment the user does not have.
var ErrNotEnrolled = errors.New("not enrolled in this course")

// APIError is a non-2xx response that is not an auth failure. Message
// carries the server's human-readable explanation when one was provided.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}
