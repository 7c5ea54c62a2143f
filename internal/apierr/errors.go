// Package apierr defines the error taxonomy for the analysis pipeline. Every
// failure that crosses the gateway boundary is one of these; raw transport
// errors never reach callers.
package apierr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure classification.
type Code string

const (
	CodeNetwork       Code = "NETWORK_ERROR"
	CodeTimeout       Code = "TIMEOUT_ERROR"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeAPIKey        Code = "API_KEY_ERROR"
	CodeConfiguration Code = "CONFIGURATION_ERROR"
	CodeUnknown       Code = "UNKNOWN_ERROR"
)

// Error is the common base for all analysis failures. Retryable marks a
// failure as transient and eligible for automatic retry under backoff.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Status    int // HTTP status, when one applies
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Network wraps a transport-level failure. Retryable.
func Network(err error) *Error {
	return &Error{Code: CodeNetwork, Message: "network connection failed", Retryable: true, Err: err}
}

// Timeout marks an attempt that exceeded its deadline. Retryable.
func Timeout(msg string) *Error {
	if msg == "" {
		msg = "request timed out"
	}
	return &Error{Code: CodeTimeout, Message: msg, Retryable: true}
}

// Validation marks a semantically invalid or empty model response. Retrying
// will not change a malformed response, so it is never retried.
func Validation(msg string) *Error {
	if msg == "" {
		msg = "invalid response from model"
	}
	return &Error{Code: CodeValidation, Message: msg, Retryable: false}
}

// APIKey marks a missing or rejected credential. Not retryable.
func APIKey(msg string) *Error {
	if msg == "" {
		msg = "API key is missing or invalid"
	}
	return &Error{Code: CodeAPIKey, Message: msg, Retryable: false}
}

// Configuration marks a setup problem detected before any I/O. Not retryable.
func Configuration(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg, Retryable: false}
}

// Wrap converts an arbitrary error into the taxonomy. Errors already in the
// taxonomy pass through unchanged; unknown failures become a generic API
// error, retryable by default policy.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Code: CodeUnknown, Message: err.Error(), Retryable: true, Err: err}
}

// Retryable reports whether err is classified as transient. Errors outside
// the taxonomy are treated as retryable, matching Wrap's default policy.
func Retryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return true
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
