// Package domainerrors carries typed, code-bearing errors across the
// service/handler boundary. Stores never return these directly; they return
// sentinel errors (pkg/platform/sentinel) which services translate here.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Handlers map codes to HTTP statuses;
// services use them to branch without string matching.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal"

	// Document submission rejections. Structurally distinct per the policy:
	// an incomplete pair is a data-integrity failure, insufficient documents
	// is a policy failure the user may cure with a later submission.
	CodeIncompletePair        Code = "incomplete_pair"
	CodeInsufficientDocuments Code = "insufficient_documents"

	// Email verification gate.
	CodeInvalidToken Code = "invalid_token"
	CodeExpiredToken Code = "expired_token"

	// A role with no requirement rule is a configuration defect, never a
	// user-facing validation failure. Fail closed.
	CodeUnknownRole Code = "unknown_role"
)

// Error is the concrete domain error type. Message is safe to surface to the
// caller verbatim; wrapped causes are for logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with a code and user-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for untyped
// errors so nothing leaks raw internals to clients.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the user-safe message for err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the status handlers should write.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeIncompletePair, CodeInsufficientDocuments:
		return http.StatusUnprocessableEntity
	case CodeInvalidToken, CodeExpiredToken:
		return http.StatusBadRequest
	case CodeUnknownRole, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
