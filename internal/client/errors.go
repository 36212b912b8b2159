// ABOUTME: Typed errors returned by the booking API client
// ABOUTME: Maps transport and HTTP status failures to a small taxonomy

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the token is missing or was rejected by the backend
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials means the backend refused a login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationRejectedError carries the backend's reason for refusing a booking
type ValidationRejectedError struct {
	StatusCode int
	Message    string
}

func (e *ValidationRejectedError) Error() string {
	return e.Message
}

// RequestFailedError is an unexpected non-success response
type RequestFailedError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s (status %d)", e.Operation, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: backend returned status %d", e.Operation, e.StatusCode)
}

// NetworkError wraps a transport failure, including timeouts
type NetworkError struct {
	BaseURL  string
	Err      error
	timedOut bool
	canceled bool
}

func (e *NetworkError) Error() string {
	switch {
	case e.canceled:
		return "request canceled"
	case e.timedOut:
		return "request timed out"
	default:
		return fmt.Sprintf("cannot connect to backend at %s: %v", e.BaseURL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran past its deadline
func (e *NetworkError) Timeout() bool {
	return e.timedOut
}

// Canceled reports whether the caller canceled the request
func (e *NetworkError) Canceled() bool {
	return e.canceled
}
