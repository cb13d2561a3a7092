package checkout

import (
	"errors"
	"fmt"

	"github.com/alma-labs/storefront/internal/domain/catalog"
)

var (
	ErrForbidden          = errors.New("checkout: not allowed")
	ErrMissingPaymentData = errors.New("checkout: missing payment verification data")
	ErrUnknownProduct     = errors.New("checkout: invalid product in cart")
	ErrOrderMismatch      = errors.New("checkout: payment does not correspond to this order")
	ErrInvalidSignature   = errors.New("checkout: invalid payment signature")
)

// InsufficientStockError names the offending product so the storefront can
// tell the shopper which line to fix.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error {
	return catalog.ErrInsufficientStock
}
