/**
 * @description
 * This file defines the account model for the ledger-service. An account is the
 * balance-carrying half of the ledger: every money movement recorded in the
 * `transactions` table mutates one or two account rows, always inside the same
 * database transaction.
 *
 * @notes
 * - Monetary values use `decimal.Decimal` (NUMERIC in PostgreSQL) to avoid
 *   floating-point drift in financial arithmetic.
 * - A nil `UserID` marks a system-owned account, such as the loan float.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types. The system float account is the counterparty for loan
// disbursements and repayments and is never owned by a user.
const (
	AccountTypeSavings     = "SAVINGS"
	AccountTypeSystemFloat = "SYSTEM_FLOAT"
)

// Account represents a balance-carrying ledger account.
// Maps directly to the `accounts` table.
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"account_number"`
	UserID        *int64          `json:"user_id,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OwnedBy reports whether the account belongs to the given user. System
// accounts (nil UserID) are owned by nobody.
func (a *Account) OwnedBy(userID int64) bool {
	return a.UserID != nil && *a.UserID == userID
}
