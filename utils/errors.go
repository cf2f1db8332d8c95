package utils

import "errors"

// Domain failure kinds. Models wrap these with %w and controllers map them to
// HTTP statuses with errors.Is.
var (
	ErrValidation            = errors.New("invalid input")
	ErrNotFound              = errors.New("record not found")
	ErrInvalidSignature      = errors.New("gateway signature verification failed")
	ErrInsufficientBalance   = errors.New("requested amount exceeds available balance")
	ErrBelowMinimumThreshold = errors.New("requested amount below minimum payout threshold")
	ErrAlreadyResolved       = errors.New("payout request already resolved")
	ErrMissingReference      = errors.New("payment reference required")

	ErrUserIDNotFound = errors.New("authentication required: user ID not found")
	ErrUnauthorized   = errors.New("unauthorized access")
)
