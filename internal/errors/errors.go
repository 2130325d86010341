package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a regimen error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE" // 502
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// RegimenError represents a structured error with code, status, and details.
type RegimenError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RegimenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RegimenError {
	return &RegimenError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewProductNotFound creates a 404 error for a product id missing from the catalog.
func NewProductNotFound(id int) *RegimenError {
	return &RegimenError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("product not found: %d", id),
		Details: map[string]any{"product_id": id},
	}
}

// NewCatalogUnavailable creates a 502 error when the catalog source cannot be read.
func NewCatalogUnavailable(err error) *RegimenError {
	details := map[string]any{}
	if err != nil {
		details["cause"] = err.Error()
	}
	return &RegimenError{
		Code:    ErrCatalogUnavailable,
		Status:  502,
		Message: "product catalog is unavailable",
		Details: details,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *RegimenError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &RegimenError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// As extracts a RegimenError from err, following wrap chains.
func As(err error) (*RegimenError, bool) {
	var rErr *RegimenError
	if stderrors.As(err, &rErr) {
		return rErr, true
	}
	return nil, false
}

// Is checks if an error is a RegimenError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := As(err); ok {
		return rErr.Code == code
	}
	return false
}
