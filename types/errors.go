package types

import (
	"fmt"
)

// ErrorType classifies a request failure. The dispatcher guarantees that
// every failed outcome carries exactly one of these values, so callers can
// branch on recoverability without inspecting error strings.
type ErrorType string

const (
	// ErrorTypeNetworkDisconnected means no connectivity was detected and no
	// network attempt was made.
	ErrorTypeNetworkDisconnected ErrorType = "NETWORK_DISCONNECTED"
	// ErrorTypeDomain means the target host is not in the transport's
	// allow-list. A configuration problem, never retried.
	ErrorTypeDomain ErrorType = "DOMAIN_ERROR"
	// ErrorTypeTimeout means a single attempt exceeded its time budget.
	ErrorTypeTimeout ErrorType = "TIMEOUT_ERROR"
	// ErrorTypeNetwork is a generic transport failure.
	ErrorTypeNetwork ErrorType = "NETWORK_ERROR"
	// ErrorTypeHTTP is a well-formed response with a status outside [200,300).
	// Carries the parsed server-side error detail.
	ErrorTypeHTTP ErrorType = "HTTP_ERROR"
	// ErrorTypeConfig means the backend base URL was unavailable or invalid.
	ErrorTypeConfig ErrorType = "CONFIG_ERROR"
	// ErrorTypeMaxRetriesExceeded means all attempts were exhausted with only
	// transient failures.
	ErrorTypeMaxRetriesExceeded ErrorType = "MAX_RETRIES_EXCEEDED"
	// ErrorTypeLoginFailed means the platform login primitive yielded no code,
	// or account synthesis/creation failed.
	ErrorTypeLoginFailed ErrorType = "LOGIN_FAILED"
)

// IsTransient reports whether a failure of this type is expected to change
// across retries. Only transient failures are eligible for retry.
func (t ErrorType) IsTransient() bool {
	return t == ErrorTypeTimeout || t == ErrorTypeNetwork
}

// RequestError is the structured failure attached to a RequestOutcome.
type RequestError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request error [%s] (HTTP %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request error [%s]: %s", e.Type, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new request error
func NewRequestError(t ErrorType, message string) *RequestError {
	return &RequestError{Type: t, Message: message}
}

// WrapRequestError creates a request error wrapping an underlying cause.
func WrapRequestError(t ErrorType, message string, cause error) *RequestError {
	return &RequestError{Type: t, Message: message, Err: cause}
}
