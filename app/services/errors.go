package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrDuplicatePayment   = errors.New("payment reference already used")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrCartItemNotFound   = errors.New("item not in cart")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedPayload   = errors.New("malformed webhook payload")
)

// InsufficientStockError names the cart item that could not be covered.
type InsufficientStockError struct {
	Item      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Item)
}

// IsInsufficientStock reports whether err carries an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}
