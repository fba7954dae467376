package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across the order workflow.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
	ErrConflict             = errors.New("conflict")
	ErrEmptySelection       = errors.New("no cart line selected")
	ErrUnavailable          = errors.New("item unavailable")
	ErrInventoryUnreachable = errors.New("inventory gateway unreachable")
	ErrGatewayUnreachable   = errors.New("payment gateway unreachable")
	ErrStorage              = errors.New("storage failure")
	ErrServiceUnavail       = errors.New("service unavailable")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// EmptySelection creates a 422 error for an order attempt with no selected lines.
func EmptySelection() *AppError {
	return &AppError{
		Code:    "EMPTY_SELECTION",
		Message: "no cart line is selected for ordering",
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrEmptySelection,
	}
}

// Unavailable creates a 409 error for lines that cannot be fulfilled.
func Unavailable(message string) *AppError {
	return &AppError{
		Code:    "ITEM_UNAVAILABLE",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrUnavailable,
	}
}

// InventoryUnreachable creates a 502 error for a failed stock query.
func InventoryUnreachable(err error) *AppError {
	return &AppError{
		Code:    "INVENTORY_UNREACHABLE",
		Message: "inventory could not be queried, please retry",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrInventoryUnreachable, err),
	}
}

// GatewayUnreachable creates a 502 error for a payment gateway that could not
// be reached. The settlement outcome is unknown to the caller.
func GatewayUnreachable(err error) *AppError {
	return &AppError{
		Code:    "GATEWAY_UNREACHABLE",
		Message: "payment gateway could not be reached, please retry",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrGatewayUnreachable, err),
	}
}

// Storage creates a 500 error for a persistence failure.
func Storage(op string, err error) *AppError {
	return &AppError{
		Code:    "STORAGE_ERROR",
		Message: fmt.Sprintf("order not saved: %s failed", op),
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %s: %w", ErrStorage, op, err),
	}
}

// ServiceUnavailable creates a 503 error with a retry hint.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrUnavailable):
		return http.StatusConflict
	case errors.Is(err, ErrEmptySelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInventoryUnreachable), errors.Is(err, ErrGatewayUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
