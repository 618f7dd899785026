package ledger

import "errors"

var (
	// Validation
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidReceipt = errors.New("invalid receipt number")

	// State conflicts
	ErrAlreadyRegistered = errors.New("already registered")
	ErrDuplicateReceipt  = errors.New("receipt number already used")
	ErrAlreadyDecided    = errors.New("receipt already decided")
	ErrReceiptNotFound   = errors.New("receipt not found")

	// Resource exhaustion
	ErrOutOfStock          = errors.New("out of stock")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPersistence means the in-memory change was rolled back and the
	// caller may retry without risk of a double effect.
	ErrPersistence = errors.New("persistence failure")
)
