// Package domainerrors defines the error taxonomy shared by all domain
// services. Services create or wrap errors with a Code; transport layers
// translate codes to HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and logging.
type Code string

const (
	// CodeInvalidInput: caller-supplied data failed validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation: a domain invariant would be broken by the operation.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeBadRequest: the request is structurally unusable (missing ids, bad query params).
	CodeBadRequest Code = "bad_request"
	// CodeNotFound: the addressed entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict: the operation conflicts with current state.
	CodeConflict Code = "conflict"
	// CodeUnauthorized: the caller's credentials are missing or invalid.
	CodeUnauthorized Code = "unauthorized"
	// CodeUnavailable: a dependency is temporarily unavailable.
	CodeUnavailable Code = "unavailable"
	// CodeInternal: unexpected failure; details stay in logs, not responses.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It optionally wraps an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a domain code and message.
// A nil err yields a plain coded error so call sites don't need to branch.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the domain code from an error chain.
// Non-domain errors map to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ToHTTPStatus maps a domain code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the outward-facing message for an error chain.
// Non-domain errors collapse to a generic message so internals never leak.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
