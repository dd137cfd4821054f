// Package apperr defines the error kinds the HTTP layer knows how to report.
//
// Services return *Error values (or wrap them); pkg/response turns any error
// into exactly one status code and JSON body:
//
//	if price <= 0 {
//	    return apperr.Invalid("price must be greater than zero")
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindInvalid         Kind = "invalid_input"
	KindValidation      Kind = "validation_failed"
	KindNotFound        Kind = "not_found"
	KindUpstream        Kind = "upstream_failure"
	KindInternal        Kind = "internal"
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalid:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // field-level errors, only for KindValidation
	Err     error             // underlying cause, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "Unauthorized access"}
}

// Forbidden uses the generic "forbidden access" message unless one is given.
func Forbidden(message ...string) *Error {
	msg := "forbidden access"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &Error{Kind: KindForbidden, Message: msg}
}

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream reports a failure of an external collaborator. The cause's message
// is passed through to the client as-is.
func Upstream(err error) *Error {
	msg := "upstream service failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal Server Error", Err: err}
}

// From returns the *Error inside err, or an internal error wrapping it.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}
