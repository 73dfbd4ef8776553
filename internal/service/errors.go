package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error leaving the service layer wraps exactly one of
// these so the transport layer can map it to a response without string
// matching.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrPermission    = errors.New("permission denied")
	ErrStateConflict = errors.New("conflicting order state")
)

var (
	ErrEmptyCart      = fmt.Errorf("%w: cart is empty, nothing to checkout", ErrValidation)
	ErrOrderCancelled = fmt.Errorf("%w: cancelled orders cannot be completed", ErrStateConflict)
	ErrOrderCompleted = fmt.Errorf("%w: completed orders cannot be cancelled", ErrStateConflict)
)
