// Package apperrors defines the tagged error type shared by all layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for propagation and HTTP mapping.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindRateLimit  Kind = "RATE_LIMIT"
	KindLLMService Kind = "LLM_SERVICE"
	KindStorage    Kind = "STORAGE"
	KindCache      Kind = "CACHE"
	KindInternal   Kind = "INTERNAL"
)

// Error carries an error kind, a caller-facing message, and the retriable
// flag used by the LLM path to distinguish "ask the user to retry" from
// permanent misconfiguration.
type Error struct {
	Kind      Kind
	Message   string
	Retriable bool
	Err       error
	Details   map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithRetriable sets the retriable flag.
func (e *Error) WithRetriable(retriable bool) *Error {
	e.Retriable = retriable
	return e
}

// WithDetails attaches structured details.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetriable reports whether the error chain is marked retriable.
// Unclassified errors are treated as retriable so transient transport
// failures are not turned into permanent ones.
func IsRetriable(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Retriable
	}
	return true
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code surfaced to callers.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindLLMService:
		return http.StatusBadGateway
	case KindStorage, KindCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
