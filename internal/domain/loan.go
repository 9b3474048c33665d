/**
 * @description
 * This file defines the loan model and the pure state-transition rules of the
 * loan lifecycle. The store applies these rules while holding a row lock on
 * the loan, so the functions here must stay side-effect free.
 *
 * Lifecycle: PENDING -> APPROVED | REJECTED; APPROVED -> ACTIVE on
 * disbursement; APPROVED/ACTIVE -> PAID_OFF once the outstanding payable
 * reaches zero. PAID_OFF and REJECTED are terminal.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan statuses.
const (
	LoanStatusPending  = "PENDING"
	LoanStatusApproved = "APPROVED"
	LoanStatusActive   = "ACTIVE"
	LoanStatusPaidOff  = "PAID_OFF"
	LoanStatusRejected = "REJECTED"
)

// Loan represents a credit facility owned by the requesting user.
// Maps directly to the `loans` table. TotalPayable is the remaining payable
// balance, not the original principal+interest.
type Loan struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	RequestedAmount  decimal.Decimal `json:"requested_amount"`
	DisbursedAmount  decimal.Decimal `json:"disbursed_amount"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TermInMonths     int             `json:"term_in_months"`
	Status           string          `json:"status"`
	ApprovedByID     *int64          `json:"approved_by_id,omitempty"`
	DisbursementDate *time.Time      `json:"disbursement_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LoanRequest is the payload for requesting a new loan.
type LoanRequest struct {
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermInMonths    int             `json:"term_in_months"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
}

// LoanRepayment is the payload for repaying a loan from one of the
// borrower's accounts.
type LoanRepayment struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

var (
	decimalHundred = decimal.NewFromInt(100)
	decimalTwelve  = decimal.NewFromInt(12)
)

// ComputeTotalPayable returns principal plus simple (non-compounding)
// interest over the loan term: P + P * (rate/100) * (term/12).
func ComputeTotalPayable(principal decimal.Decimal, termInMonths int, interestRate decimal.Decimal) decimal.Decimal {
	years := decimal.NewFromInt(int64(termInMonths)).Div(decimalTwelve)
	interest := principal.Mul(interestRate.Div(decimalHundred)).Mul(years)
	return principal.Add(interest).Round(2)
}

// Decidable reports whether the loan can still be approved or rejected.
func (l *Loan) Decidable() bool {
	return l.Status == LoanStatusPending
}

// Disbursable reports whether funds can be released for the loan.
func (l *Loan) Disbursable() bool {
	return l.Status == LoanStatusApproved
}

// Repayable reports whether the loan accepts repayments. Approved loans are
// repayable even before disbursement.
func (l *Loan) Repayable() bool {
	return l.Status == LoanStatusApproved || l.Status == LoanStatusActive
}

// ApplyRepayment reduces the outstanding payable by amount and advances the
// status. The payable is clamped at zero: the loan flips to PAID_OFF exactly
// when the remaining payable reaches or crosses zero and a negative payable
// is never stored. The caller must have verified Repayable first.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) {
	remaining := l.TotalPayable.Sub(amount)
	if remaining.Sign() <= 0 {
		l.TotalPayable = decimal.Zero
		l.Status = LoanStatusPaidOff
		return
	}
	l.TotalPayable = remaining
	l.Status = LoanStatusActive
}
