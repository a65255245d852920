package genie

import (
	"errors"
	"fmt"
)

// ErrPollTimeout is returned when a message never reaches a terminal
// status within the configured poll timeout.
var ErrPollTimeout = errors.New("message processing timed out")

// ErrAuth marks a credential rejection (401/403). The client handles it
// internally by invalidating the token provider and retrying once; it only
// escapes when the retried call is rejected again.
var ErrAuth = errors.New("credential rejected")

// RemoteServiceError is returned once the retry budget for an operation is
// exhausted, carrying the last underlying cause.
type RemoteServiceError struct {
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("genie %s failed: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// statusError is a non-2xx response. Retryable as a transport failure
// unless it is a credential rejection.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

func isAuthStatus(code int) bool {
	return code == 401 || code == 403
}
