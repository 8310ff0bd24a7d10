package models

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound is returned when an order lookup finds no row.
var ErrOrderNotFound = errors.New("order not found")

// VariantNotFoundError means a cart line references a variant that does
// not exist. Fatal to the whole order.
type VariantNotFoundError struct {
	VariantID int64
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant not found: %d", e.VariantID)
}

// InsufficientStockError means a deduction would drive inventory
// negative. Fatal to the whole order; nothing is persisted.
type InsufficientStockError struct {
	VariantID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: available=%d, requested=%d",
		e.VariantID, e.Available, e.Requested)
}
