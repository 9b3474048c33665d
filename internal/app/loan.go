/**
 * @description
 * This file contains the loan engine: request, approval, rejection,
 * disbursement, and repayment. State transitions and money legs execute
 * inside the repository's atomic units; this layer validates inputs,
 * enforces read scoping, and fans out lifecycle events after commit.
 */

package app

import (
	"context"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
	"github.com/esaving/ledger-service/pkg/rabbitmq"
	"github.com/shopspring/decimal"
)

// LoanService owns the loan lifecycle.
type LoanService struct {
	repo          store.Repository
	events        rabbitmq.Publisher
	eventExchange string

	limiter     RateLimiter
	repayPerMin int
}

// NewLoanService creates the loan engine. events may be nil when no broker
// is configured.
func NewLoanService(repo store.Repository, events rabbitmq.Publisher, eventExchange string) *LoanService {
	return &LoanService{
		repo:          repo,
		events:        events,
		eventExchange: eventExchange,
	}
}

// SetRateLimiter enables per-user rate limiting on repayments.
func (s *LoanService) SetRateLimiter(limiter RateLimiter, perMinute int) {
	s.limiter = limiter
	s.repayPerMin = perMinute
}

// RequestLoan creates a PENDING loan with simple interest applied over the
// term: totalPayable = P + P*(rate/100)*(term/12).
func (s *LoanService) RequestLoan(ctx context.Context, actor domain.Actor, req domain.LoanRequest) (*domain.Loan, error) {
	if req.RequestedAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.TermInMonths < 1 {
		return nil, ErrInvalidTerm
	}
	if req.InterestRate.Sign() < 0 {
		return nil, ErrInvalidRate
	}

	loan, err := s.repo.CreateLoan(ctx, &domain.Loan{
		UserID:          actor.UserID,
		RequestedAmount: req.RequestedAmount,
		DisbursedAmount: decimal.Zero,
		TotalPayable:    domain.ComputeTotalPayable(req.RequestedAmount, req.TermInMonths, req.InterestRate),
		InterestRate:    req.InterestRate,
		TermInMonths:    req.TermInMonths,
		Status:          domain.LoanStatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.publishLoanEvent(ctx, domain.EventLoanRequested, loan, loan.RequestedAmount)
	return loan, nil
}

// ApproveLoan transitions a PENDING loan to APPROVED, recording the admin.
func (s *LoanService) ApproveLoan(ctx context.Context, adminID, loanID int64) (*domain.Loan, error) {
	loan, err := s.repo.DecideLoanAtomic(ctx, loanID, adminID, true)
	if err != nil {
		return nil, err
	}
	s.publishLoanEvent(ctx, domain.EventLoanApproved, loan, loan.RequestedAmount)
	return loan, nil
}

// RejectLoan transitions a PENDING loan to REJECTED, recording the admin.
func (s *LoanService) RejectLoan(ctx context.Context, adminID, loanID int64) (*domain.Loan, error) {
	loan, err := s.repo.DecideLoanAtomic(ctx, loanID, adminID, false)
	if err != nil {
		return nil, err
	}
	s.publishLoanEvent(ctx, domain.EventLoanRejected, loan, loan.RequestedAmount)
	return loan, nil
}

// DisburseLoan releases an APPROVED loan's principal from the system float
// to the borrower's savings account and activates the loan.
func (s *LoanService) DisburseLoan(ctx context.Context, adminID, loanID int64) (*domain.Loan, error) {
	loan, _, err := s.repo.DisburseLoanAtomic(ctx, loanID, adminID)
	if err != nil {
		return nil, err
	}
	s.publishLoanEvent(ctx, domain.EventLoanDisbursed, loan, loan.DisbursedAmount)
	return loan, nil
}

// RepayLoan applies one repayment from the actor's account. Debit, float
// credit, ledger entry, and the loan update commit as one unit in the store.
func (s *LoanService) RepayLoan(ctx context.Context, actor domain.Actor, loanID int64, req domain.LoanRepayment) (*domain.Loan, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if s.limiter != nil && s.repayPerMin > 0 {
		count, _, err := s.limiter.ConsumeRateLimit(ctx, "repay", formatID(actor.UserID), s.repayPerMin, time.Minute)
		if err == nil && count > s.repayPerMin {
			return nil, ErrTooManyRequests
		}
	}

	loan, txn, err := s.repo.RepayLoanAtomic(ctx, store.RepayLoanParams{
		ActorID:     actor.UserID,
		LoanID:      loanID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	s.publishLoanEvent(ctx, domain.EventLoanRepaid, loan, txn.Amount)
	if loan.Status == domain.LoanStatusPaidOff {
		s.publishLoanEvent(ctx, domain.EventLoanPaidOff, loan, txn.Amount)
	}
	return loan, nil
}

// GetLoan returns one loan. Customers may only read their own.
func (s *LoanService) GetLoan(ctx context.Context, actor domain.Actor, loanID int64) (*domain.Loan, error) {
	loan, err := s.repo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && loan.UserID != actor.UserID {
		return nil, store.ErrForbidden
	}
	return loan, nil
}

// ListLoans returns a page of loans, newest first. Customers are scoped to
// their own loans.
func (s *LoanService) ListLoans(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.Loan, domain.Pagination, error) {
	opts = scopeToActor(actor, opts)
	loans, total, err := s.repo.ListLoans(ctx, opts)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return loans, domain.NewPagination(total, opts), nil
}

func (s *LoanService) publishLoanEvent(ctx context.Context, name string, loan *domain.Loan, amount decimal.Decimal) {
	publishEvent(ctx, s.events, s.eventExchange, domain.LedgerEvent{
		Name:      name,
		UserID:    loan.UserID,
		LoanID:    loan.ID,
		Amount:    amount,
		Timestamp: time.Now(),
	})
}
