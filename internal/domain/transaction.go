/**
 * @description
 * This file defines the transaction model, the append-only half of the ledger.
 * A transaction row is written in the same database transaction as the balance
 * mutation(s) it describes, so a visible row always has its paired balance
 * change and vice versa.
 *
 * @notes
 * - Exactly one of source/destination may be nil: deposits have no source,
 *   withdrawals have no destination, transfers and loan legs set both.
 * - Rows are immutable once COMPLETED.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionTypeDeposit          = "DEPOSIT"
	TransactionTypeWithdrawal       = "WITHDRAWAL"
	TransactionTypeTransfer         = "TRANSFER"
	TransactionTypeLoanRepayment    = "LOAN_REPAYMENT"
	TransactionTypeLoanDisbursement = "LOAN_DISBURSEMENT"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
)

// Transaction is one immutable ledger entry.
// Maps directly to the `transactions` table.
type Transaction struct {
	ID                   int64           `json:"id"`
	Reference            string          `json:"reference"`
	SourceAccountID      *int64          `json:"source_account_id,omitempty"`
	DestinationAccountID *int64          `json:"destination_account_id,omitempty"`
	LoanID               *int64          `json:"loan_id,omitempty"`
	Type                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	Description          string          `json:"description"`
	CreatedAt            time.Time       `json:"created_at"`
}

// DepositRequest is the payload for deposit and withdrawal operations.
type DepositRequest struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TransferRequest is the payload for moving funds between two accounts.
type TransferRequest struct {
	SourceAccountID      int64           `json:"source_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
}

// ListOptions controls offset pagination and substring search for list reads.
// Search matching is case-insensitive and the default order is createdAt
// descending.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	UserID *int64
}

// Normalize clamps pagination inputs to sane bounds.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	return o
}

// Offset returns the row offset for the normalized page/limit pair.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Pagination carries the page metadata returned alongside every list read.
type Pagination struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// NewPagination derives page metadata from a total row count and the
// normalized options used for the query.
func NewPagination(total int64, opts ListOptions) Pagination {
	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit != 0 {
		totalPages++
	}
	return Pagination{
		Total:       total,
		Page:        opts.Page,
		Limit:       opts.Limit,
		TotalPages:  totalPages,
		HasNextPage: int64(opts.Page*opts.Limit) < total,
		HasPrevPage: opts.Page > 1,
	}
}
