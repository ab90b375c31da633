// Package apperr defines the stable error categories the API reports to
// callers. Services return these instead of raw storage errors so handlers
// can map failures to HTTP codes without string matching, and so existence
// checks never leak through a generic "record not found" from the store.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Category is a machine-checkable error class.
type Category string

const (
	CategoryUnauthorized      Category = "UNAUTHORIZED"
	CategoryForbidden         Category = "FORBIDDEN"
	CategoryNotFound          Category = "NOT_FOUND"
	CategoryInsufficientStock Category = "INSUFFICIENT_STOCK"
	CategoryValidation        Category = "VALIDATION_ERROR"
	CategoryConflict          Category = "CONFLICT"
	CategoryStorage           Category = "STORAGE_FAILURE"
)

// Error carries a category plus a human-readable message. Wrapped causes are
// preserved for logging but never shown to API callers.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthorized(msg string) *Error {
	return &Error{Category: CategoryUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Category: CategoryForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Category: CategoryNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(msg string) *Error {
	return &Error{Category: CategoryInsufficientStock, Message: msg}
}

func InsufficientStockf(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Category: CategoryValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) *Error {
	return &Error{Category: CategoryConflict, Message: msg}
}

func Storage(msg string, err error) *Error {
	return &Error{Category: CategoryStorage, Message: msg, Err: err}
}

// CategoryOf extracts the category from err, or CategoryStorage for anything
// that is not an *Error (unclassified failures are treated as storage-level).
func CategoryOf(err error) Category {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	return CategoryStorage
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error to the HTTP status code handlers should respond with.
func HTTPStatus(err error) int {
	switch CategoryOf(err) {
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryInsufficientStock, CategoryValidation:
		return http.StatusBadRequest
	case CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
