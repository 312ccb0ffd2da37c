package billing

import "errors"

// Recoverable errors are reported to the operator and never end a checkout.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrIntegrity         = errors.New("integrity error")
)

// Fatal errors abort the in-flight bill and roll back its stock changes.
var (
	ErrPersistence = errors.New("persistence error")
	ErrCancelled   = errors.New("checkout cancelled")
)

// Recoverable reports whether err is one the engine loops on instead of aborting.
func Recoverable(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrIntegrity)
}
