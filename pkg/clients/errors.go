package clients

import (
	"fmt"
	"strings"
)

// ErrorType classifies a collaborator failure.
type ErrorType string

const (
	// ErrorTypeTransport: the request never produced a response (DNS,
	// connect, timeout). Retryable.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeStatus: the endpoint answered with a non-2xx status.
	// Retryable only for rate limiting and server-side failures.
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeDecode: the response body could not be decoded. Not retryable.
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeValidation: the response was well-formed but semantically
	// unusable (missing descriptor, malformed SMILES). Not retryable.
	ErrorTypeValidation ErrorType = "validation"
)

// Error is a structured collaborator error carrying its classification.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int
	Endpoint   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func transportError(endpoint string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeTransport,
		Message:   "request failed",
		Retryable: true,
		Cause:     cause,
		Endpoint:  endpoint,
	}
}

func statusError(endpoint string, code int, body string) *Error {
	msg := "unexpected status"
	if body != "" {
		msg = fmt.Sprintf("unexpected status: %s", strings.TrimSpace(body))
	}
	return &Error{
		Type:       ErrorTypeStatus,
		Message:    msg,
		Retryable:  code == 429 || code >= 500,
		StatusCode: code,
		Endpoint:   endpoint,
	}
}

func decodeError(endpoint string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeDecode,
		Message:   "failed to decode response",
		Retryable: false,
		Cause:     cause,
		Endpoint:  endpoint,
	}
}

func validationError(message string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeValidation,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}
