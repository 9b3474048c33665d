package domain

import "time"

// User roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User is the slice of the user record the ledger-service needs: identity,
// role, and lifecycle status. Registration and password handling belong to
// the upstream auth collaborator; this service only reads users and advances
// their status during the approval flow.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the already-authenticated identity handed to every operation by
// the authorization layer.
type Actor struct {
	UserID int64
	Role   string
}

// UserStats aggregates user counts by lifecycle status for the admin
// dashboard.
type UserStats struct {
	TotalUsers     int64 `json:"total_users"`
	PendingUsers   int64 `json:"pending_users"`
	ActiveUsers    int64 `json:"active_users"`
	InactiveUsers  int64 `json:"inactive_users"`
	SuspendedUsers int64 `json:"suspended_users"`
}
