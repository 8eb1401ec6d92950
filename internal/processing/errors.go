package processing

import (
	"errors"
	"fmt"
)

// ErrProcessingFailed is the sentinel wrapped by every *Error, so callers
// can detect any processing failure with errors.Is.
var ErrProcessingFailed = errors.New("ai processing failed")

// Kind classifies a processing failure. The classification is coarse on
// purpose: it carries enough detail to act on (retry externally, fix the
// input) without exposing anything from the provider response.
type Kind string

// Possible failure classifications
const (
	KindRateLimited  Kind = "rate_limited"
	KindInvalidInput Kind = "invalid_input"
	KindTimeout      Kind = "timeout"
	KindUnknown      Kind = "unknown"
)

// Error is the failure type returned by Processor implementations.
// Message must already be safe to persist and show to a client; raw
// provider response bodies and stack traces never go in here.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (%s): %s", ErrProcessingFailed, e.Kind, e.Message)
	}
	return fmt.Sprintf("%v (%s)", ErrProcessingFailed, e.Kind)
}

// Unwrap returns ErrProcessingFailed to support errors.Is.
func (e *Error) Unwrap() error {
	return ErrProcessingFailed
}

// NewError creates a classified processing error with a human-safe message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the failure classification from err, returning
// KindUnknown for errors that are not a *Error.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return KindUnknown
}
