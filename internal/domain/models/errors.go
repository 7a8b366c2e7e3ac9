package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Every rejected operation wraps exactly
// one of them so callers can branch with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrConsistency   = errors.New("consistency violation")
	ErrNotFound      = errors.New("not found")

	// ErrInsufficientStock is matched by every InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCapacityExhausted is wrapped in a validation error when a machine pool
	// cannot absorb the requested quantity.
	ErrCapacityExhausted = errors.New("machine capacity exhausted")
)

// Validationf builds an ErrValidation wrapped error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Configurationf builds an ErrConfiguration wrapped error.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Consistencyf builds an ErrConsistency wrapped error.
func Consistencyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConsistency, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound wrapped error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InsufficientStockError reports a deduction larger than what the lots hold.
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

// Is lets errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
