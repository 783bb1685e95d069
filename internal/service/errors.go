package service

import "errors"

var (
	ErrNonPositive      = errors.New("error value must be positive")
	ErrEmptyHistory     = errors.New("error empty purchase history")
	ErrPriceUnavailable = errors.New("error current price unavailable")
)
