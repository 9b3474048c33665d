package domain

// Lifecycle statuses shared by users, accounts, and sessions.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)
