/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the ledger-service performs. The interface decouples the business
 * services from PostgreSQL and lets tests substitute stub implementations.
 *
 * Every method whose name ends in Atomic executes as one database
 * transaction: all of its reads, ownership/state checks, balance mutations,
 * and ledger inserts commit together or not at all.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/shopspring/decimal: Monetary amounts.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/shopspring/decimal"
)

// DepositParams describes a single-account credit or debit executed on
// behalf of an actor. The ownership check runs inside the atomic unit.
type DepositParams struct {
	ActorID     int64
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// TransferParams describes a two-account movement. LoanID links the ledger
// entry to a loan when the transfer is a repayment or disbursement leg.
type TransferParams struct {
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	Type                 string
	LoanID               *int64
	Description          string
}

// RepayLoanParams carries everything the repayment atomic unit validates and
// applies: payer ownership, loan ownership and state, the money leg, and the
// outstanding-payable update.
type RepayLoanParams struct {
	ActorID     int64
	LoanID      int64
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// Repository is the durable-store contract for the ledger and loan engine.
type Repository interface {
	// Accounts
	FindAccountByID(ctx context.Context, id int64) (*domain.Account, error)
	FindAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
	FindSystemFloatAccount(ctx context.Context) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	ListAccounts(ctx context.Context, opts domain.ListOptions) ([]domain.Account, int64, error)

	// Account ledger
	DepositAtomic(ctx context.Context, p DepositParams) (*domain.Transaction, error)
	WithdrawAtomic(ctx context.Context, p DepositParams) (*domain.Transaction, error)
	TransferAtomic(ctx context.Context, p TransferParams) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, opts domain.ListOptions) ([]domain.Transaction, int64, error)

	// Loan engine
	CreateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	FindLoanByID(ctx context.Context, id int64) (*domain.Loan, error)
	DecideLoanAtomic(ctx context.Context, loanID, adminID int64, approve bool) (*domain.Loan, error)
	DisburseLoanAtomic(ctx context.Context, loanID, adminID int64) (*domain.Loan, *domain.Transaction, error)
	RepayLoanAtomic(ctx context.Context, p RepayLoanParams) (*domain.Loan, *domain.Transaction, error)
	ListLoans(ctx context.Context, opts domain.ListOptions) ([]domain.Loan, int64, error)

	// Session rotation
	CreateSessionAtomic(ctx context.Context, session *domain.UserSession) (*domain.UserSession, error)
	FindSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.UserSession, error)
	DeactivateUserSessions(ctx context.Context, userID int64, now time.Time) error
	ListSessions(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.UserSession, int64, error)

	// Users (approval flow and actor context)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
	ApproveUserAtomic(ctx context.Context, userID int64, accountNumber string) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, userID int64, status string) (*domain.User, error)
	CountUsersByStatus(ctx context.Context) (*domain.UserStats, error)
}
