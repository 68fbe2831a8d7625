package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetryable is returned when a storage transaction failed because of a
	// conflict with a concurrent transaction; the caller may retry the whole
	// operation
	ErrRetryable = errors.New("transaction conflict")

	// ErrUploadFailed is returned when the external image host rejects an upload
	ErrUploadFailed = errors.New("image upload failed")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// InsufficientStockError is returned when a sale requests more units than the
// product has in stock. It carries both quantities for the error response.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}
