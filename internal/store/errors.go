package store

import "errors"

// Typed failures surfaced by every store operation. The api layer translates
// these into HTTP responses; nothing is swallowed inside the store.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrFloatNotConfigured  = errors.New("system float account not configured")

	ErrForbidden         = errors.New("actor does not own the resource")
	ErrInvalidLoanState  = errors.New("operation not valid for current loan status")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSessionExpired    = errors.New("session inactive or expired")

	// ErrConflict covers unique-constraint violations such as a duplicate
	// account number or refresh token.
	ErrConflict = errors.New("conflicting record already exists")

	// ErrTransient marks store contention that exhausted its retry budget.
	// Callers may safely retry the whole operation.
	ErrTransient = errors.New("transient store contention")
)
