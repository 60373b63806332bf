package order

import "errors"

var (
	ErrUnknownOrder         = errors.New("unknown order")
	ErrOrderNotActive       = errors.New("order not active")
	ErrFillExceedsRemaining = errors.New("fill exceeds remaining amount")
	ErrInvalidIntent        = errors.New("invalid order intent")
)
