// Package apperr defines the structured errors returned by the ledger services.
//
// Every error carries a stable Code that transports map to a status
// (HTTP or Connect) and an optional Reason that narrows a Conflict down
// to the rule that was violated.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Conflict reasons.
const (
	ReasonDuplicateInvitation = "DUPLICATE_INVITATION"
	ReasonAlreadyMember       = "ALREADY_MEMBER"
	ReasonAlreadyFriends      = "ALREADY_FRIENDS"
	ReasonAlreadyTerminal     = "ALREADY_TERMINAL"
	ReasonEmailTaken          = "EMAIL_TAKEN"
)

type AppError struct {
	Code    string
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(format string, args ...any) *AppError {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// Conflict builds a CONFLICT error tagged with one of the Reason constants.
func Conflict(reason, message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Reason:  reason,
		Message: message,
	}
}

// Internal wraps an unexpected failure. The cause is kept for logs only.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal server error")
}

// CodeOf returns the code of the first AppError in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ReasonOf returns the conflict reason of err, if any.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error to the status code the REST API answers with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to a client.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code == CodeInternal {
			return "internal server error"
		}
		return appErr.Message
	}
	return "internal server error"
}
