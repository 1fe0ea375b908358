package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict with current state")
	ErrValidation = errors.New("validation failed")
)

// OrderingError is returned when no supplier offering could be ordered.
// SKU names the last offering that was attempted, or is empty when there
// were no candidates at all.
type OrderingError struct {
	SKU string
}

func (e *OrderingError) Error() string {
	if e.SKU == "" {
		return "no supplier products available to order"
	}
	return fmt.Sprintf("could not order %s", e.SKU)
}
