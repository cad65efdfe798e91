package ledger

import "errors"

var (
	ErrReferenceNotFound = errors.New("referenced item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidAmount     = errors.New("amount must be zero or positive")
)
