// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("not allowed to act on this resource")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotificationDelivery   = errors.New("notification delivery failed")
)

// NotFoundError wraps ErrNotFound with the resource kind for the response layer.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// InsufficientFundsError is returned when a buyer's wallet cannot cover a
// purchase. It carries the exact numbers so the caller can show them.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: need %s coins, have %s", e.Required, e.Available)
}

// InsufficientBalanceError is the seller-ledger counterpart, used when a
// withdrawal exceeds the available balance.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient seller balance: requested %s, available %s", e.Requested, e.Available)
}

// InvalidStateTransitionError reports an operation attempted against a purchase
// (or payment/withdrawal) that is not in the required source state.
type InvalidStateTransitionError struct {
	Message string
}

func (e *InvalidStateTransitionError) Error() string { return e.Message }

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

func NewInvalidState(format string, args ...interface{}) error {
	return &InvalidStateTransitionError{Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidStateTransition) }
