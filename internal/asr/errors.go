package asr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AuthError reports a missing or rejected credential.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "authentication failed: " + e.Message
	}
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// NetworkError reports that the service could not be reached or did not
// answer in time.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("transcription request timed out: %v", e.Err)
	}
	return fmt.Sprintf("transcription service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ServiceError is a non-success response carrying the service's message.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcription service error (HTTP %d): %s", e.StatusCode, e.Message)
}
