package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger event routing keys published after successful commits. Consumed by
// the notification service.
const (
	EventTransactionCompleted = "ledger.transaction.completed"
	EventLoanRequested        = "ledger.loan.requested"
	EventLoanApproved         = "ledger.loan.approved"
	EventLoanRejected         = "ledger.loan.rejected"
	EventLoanDisbursed        = "ledger.loan.disbursed"
	EventLoanRepaid           = "ledger.loan.repaid"
	EventLoanPaidOff          = "ledger.loan.paid_off"
	EventUserApproved         = "ledger.user.approved"
)

// LedgerEvent is the payload published to the events exchange. Reference is
// the transaction reference when the event describes a money movement.
type LedgerEvent struct {
	Name      string          `json:"name"`
	UserID    int64           `json:"user_id,omitempty"`
	LoanID    int64           `json:"loan_id,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
