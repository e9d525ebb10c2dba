// Package apperr defines the domain error taxonomy shared by services and
// handlers. Handlers map these onto HTTP statuses; services never touch HTTP.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced product, transaction or barcode does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the caller sent malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState means the operation is not allowed from the entity's
	// current state, e.g. finalizing a completed transaction.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientStock means a sale asked for more units than are on hand,
	// including races lost against a concurrent sale.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrBarcodePoolExhausted means no barcode with status "available" is left.
	ErrBarcodePoolExhausted = errors.New("barcode pool exhausted")

	// ErrConflict is an internal lock/version conflict. It is retried a bounded
	// number of times before being surfaced as one of the errors above.
	ErrConflict = errors.New("concurrent update conflict")
)

// NotFound wraps ErrNotFound with the entity that was looked up.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// Validation wraps ErrValidation with a human-readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// InvalidState wraps ErrInvalidState with a reason.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// InsufficientStock names the offending product so the caller can point the
// cashier at the exact cart line.
func InsufficientStock(productName string, requested, available int) error {
	return fmt.Errorf("product %q: requested %d, available %d: %w",
		productName, requested, available, ErrInsufficientStock)
}
