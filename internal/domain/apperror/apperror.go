// Package apperror carries the caller-facing error taxonomy of the identity
// services. Each Kind maps to exactly one HTTP status at the boundary.
package apperror

import (
	"errors"
	"net/http"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindRateLimit
	KindNotFound
)

// Error is a classified error. Message is safe to show to callers; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Details holds per-field messages for validation failures.
	Details map[string]string
	// RetryAfter is set on rate-limit errors when the window reset is known.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperror.ErrAuth) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrRateLimit  = &Error{Kind: KindRateLimit}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrInternal   = &Error{Kind: KindInternal}
)

func Validation(msg string) error  { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error    { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) error        { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) error   { return &Error{Kind: KindForbidden, Message: msg} }
func RateLimited(msg string) error { return &Error{Kind: KindRateLimit, Message: msg} }
func NotFound(msg string) error    { return &Error{Kind: KindNotFound, Message: msg} }

// InvalidFields is a validation error carrying per-field messages.
func InvalidFields(details map[string]string) error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

// RateLimitedFor is a rate-limit error that knows when the caller may retry.
func RateLimitedFor(msg string, retry time.Duration) error {
	return &Error{Kind: KindRateLimit, Message: msg, RetryAfter: retry}
}

// Internal wraps an unexpected failure. The message shown to callers is fixed.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf classifies any error; unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns what the caller may see. Internal errors never leak
// their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

// DetailsOf returns validation details, if any.
func DetailsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// RetryAfterOf returns the retry hint of a rate-limit error.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
