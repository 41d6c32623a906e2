// Package apperr defines the error taxonomy shared by services and the HTTP
// boundary. Services return *Error values (or wrap them); pkg/response maps
// the Kind to a status code and a client-safe message.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindDuplicateEmail
	KindInvalidCredentials
	KindUnauthorized
	KindInvalidToken
	KindForbidden
	KindValidation
	KindUpstreamGateway
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateEmail:
		return "DuplicateEmail"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidToken:
		return "InvalidToken"
	case KindForbidden:
		return "Forbidden"
	case KindValidation:
		return "ValidationError"
	case KindUpstreamGateway:
		return "UpstreamGatewayError"
	case KindNotFound:
		return "NotFound"
	default:
		return "Internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindDuplicateEmail, KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages for KindValidation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrForbidden)
// holds for every forbidden error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Sentinels for errors.Is checks and for returning directly.
var (
	ErrDuplicateEmail     = New(KindDuplicateEmail, "Email already registered")
	ErrInvalidCredentials = New(KindInvalidCredentials, "Invalid email or password")
	ErrUnauthorized       = New(KindUnauthorized, "Unauthorized")
	ErrInvalidToken       = New(KindInvalidToken, "Invalid token")
	ErrForbidden          = New(KindForbidden, "Access denied")
	ErrNotFound           = New(KindNotFound, "Not found")
)

// Validation builds a KindValidation error carrying field messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// Invalid builds a KindValidation error with a single message.
func Invalid(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Upstream wraps a payment processor failure.
func Upstream(err error) *Error {
	return Wrap(KindUpstreamGateway, "Payment gateway error", err)
}

// Internal wraps an unexpected failure. Its cause is never shown to clients.
func Internal(err error) *Error {
	return Wrap(KindInternal, "Server error", err)
}

// KindOf reports the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From returns err as an *Error, classifying unknown errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
