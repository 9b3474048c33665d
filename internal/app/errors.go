package app

import "errors"

// Input-validation failures raised before any store work happens.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidTerm     = errors.New("loan term must be at least one month")
	ErrInvalidRate     = errors.New("interest rate must not be negative")
	ErrSameAccount     = errors.New("source and destination accounts must differ")
	ErrInvalidStatus   = errors.New("unknown lifecycle status")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)
