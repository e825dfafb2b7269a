package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable reason codes returned to callers. Codes are part of the API
// contract; messages are free to change.
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeUnauthorized      = "unauthorized"
	CodeAlreadyReviewed   = "already_reviewed"
	CodeNotDelivered      = "order_not_delivered"
	CodeTooSoon           = "too_soon"
	CodeBanned            = "banned"
	CodeNotVerified       = "mobile_not_verified"
	CodeAlreadyRated      = "already_rated"
	CodeAlreadyReported   = "already_reported"
	CodeAlreadyResponded  = "already_responded"
	CodeRestaurantMissing = "restaurant_not_found"
	CodeInvalidState      = "invalid_state"
	CodeInternal          = "server_error"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
	Extra   map[string]interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithExtra attaches structured detail (e.g. seconds_remaining) that handlers
// include alongside the reason code.
func (e *AppError) WithExtra(key string, value interface{}) *AppError {
	if e.Extra == nil {
		e.Extra = make(map[string]interface{})
	}
	e.Extra[key] = value
	return e
}

func New(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

// State marks a business-rule violation (already reviewed, banned, too soon).
// These are expected outcomes, not failures.
func State(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusBadRequest}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Status: http.StatusInternalServerError, Err: err}
}

// Is reports whether err carries the given reason code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From extracts an AppError, wrapping anything else as Internal so raw
// storage errors never leak to callers.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Server error", err)
}
