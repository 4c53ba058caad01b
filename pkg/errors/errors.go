package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a caller cannot be authenticated
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrValidation is returned when an input value is out of range
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrPricingPending is returned while store settings are still loading
type ErrPricingPending struct{}

func (e *ErrPricingPending) Error() string {
	return "store settings are still loading"
}

// ErrEmptyCart is returned when checking out a cart without items
type ErrEmptyCart struct{}

func (e *ErrEmptyCart) Error() string {
	return "cart is empty"
}

// ErrMinimumOrderNotMet blocks checkout below the store's minimum order amount
type ErrMinimumOrderNotMet struct {
	Minimum  decimal.Decimal
	Subtotal decimal.Decimal
}

func (e *ErrMinimumOrderNotMet) Error() string {
	return fmt.Sprintf("minimum order amount %s not met (subtotal %s)",
		e.Minimum.StringFixed(2), e.Subtotal.StringFixed(2))
}

// ErrReadOnly is returned by data sources that do not accept writes
type ErrReadOnly struct {
	Source string
}

func (e *ErrReadOnly) Error() string {
	return fmt.Sprintf("%s is read-only", e.Source)
}
