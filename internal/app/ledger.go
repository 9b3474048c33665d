/**
 * @description
 * This file contains the account-ledger service: deposits, withdrawals,
 * internal transfers, and the account/transaction read paths. The service
 * validates inputs, enforces read scoping, delegates every mutation to one
 * of the repository's atomic units, and fans out ledger events after a
 * successful commit.
 *
 * @dependencies
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/rabbitmq: Post-commit event fan-out.
 */

package app

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
	"github.com/esaving/ledger-service/pkg/rabbitmq"
)

// RateLimiter is the optional distributed limiter applied to
// balance-mutating operations. A nil limiter disables limiting.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// LedgerService owns deposit/withdraw/transfer and ledger reads.
type LedgerService struct {
	repo          store.Repository
	events        rabbitmq.Publisher
	eventExchange string

	limiter        RateLimiter
	mutationPerMin int
}

// NewLedgerService creates the account-ledger service. events may be nil
// when no broker is configured.
func NewLedgerService(repo store.Repository, events rabbitmq.Publisher, eventExchange string) *LedgerService {
	return &LedgerService{
		repo:          repo,
		events:        events,
		eventExchange: eventExchange,
	}
}

// SetRateLimiter enables per-user rate limiting on withdrawals.
func (s *LedgerService) SetRateLimiter(limiter RateLimiter, perMinute int) {
	s.limiter = limiter
	s.mutationPerMin = perMinute
}

func (s *LedgerService) consumeLimit(ctx context.Context, scope string, actorID int64) error {
	if s.limiter == nil || s.mutationPerMin <= 0 {
		return nil
	}
	count, _, err := s.limiter.ConsumeRateLimit(ctx, scope, formatID(actorID), s.mutationPerMin, time.Minute)
	if err != nil {
		// Limiter outages must not block money movement.
		log.Printf("level=warn component=ledger msg=\"rate limiter unavailable\" scope=%s err=%v", scope, err)
		return nil
	}
	if count > s.mutationPerMin {
		return ErrTooManyRequests
	}
	return nil
}

// Deposit credits an actor-owned account.
func (s *LedgerService) Deposit(ctx context.Context, actor domain.Actor, req domain.DepositRequest) (*domain.Transaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	txn, err := s.repo.DepositAtomic(ctx, store.DepositParams{
		ActorID:     actor.UserID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.publishTransaction(ctx, actor.UserID, txn)
	return txn, nil
}

// Withdraw debits an actor-owned account, failing with
// store.ErrInsufficientFunds rather than ever driving the balance negative.
func (s *LedgerService) Withdraw(ctx context.Context, actor domain.Actor, req domain.DepositRequest) (*domain.Transaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.consumeLimit(ctx, "withdraw", actor.UserID); err != nil {
		return nil, err
	}
	txn, err := s.repo.WithdrawAtomic(ctx, store.DepositParams{
		ActorID:     actor.UserID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.publishTransaction(ctx, actor.UserID, txn)
	return txn, nil
}

// Transfer moves funds between two accounts as one atomic unit. Customers
// may only move funds out of an account they own; a transfer from a foreign
// account fails the same way a lookup of a foreign account does.
func (s *LedgerService) Transfer(ctx context.Context, actor domain.Actor, req domain.TransferRequest) (*domain.Transaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.SourceAccountID == req.DestinationAccountID {
		return nil, ErrSameAccount
	}
	source, err := s.repo.FindAccountByID(ctx, req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !source.OwnedBy(actor.UserID) {
		return nil, store.ErrAccountNotFound
	}
	txn, err := s.repo.TransferAtomic(ctx, store.TransferParams{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Type:                 domain.TransactionTypeTransfer,
		Description:          req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.publishTransaction(ctx, actor.UserID, txn)
	return txn, nil
}

// GetAccount returns one account. Customers may only read their own.
func (s *LedgerService) GetAccount(ctx context.Context, actor domain.Actor, accountID int64) (*domain.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && !account.OwnedBy(actor.UserID) {
		return nil, store.ErrForbidden
	}
	return account, nil
}

// MyAccounts returns all accounts owned by the actor.
func (s *LedgerService) MyAccounts(ctx context.Context, actor domain.Actor) ([]domain.Account, error) {
	return s.repo.FindAccountsByUserID(ctx, actor.UserID)
}

// ListAccounts returns a page of accounts. Customers are scoped to their
// own accounts regardless of the requested filter.
func (s *LedgerService) ListAccounts(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.Account, domain.Pagination, error) {
	opts = scopeToActor(actor, opts)
	accounts, total, err := s.repo.ListAccounts(ctx, opts)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return accounts, domain.NewPagination(total, opts), nil
}

// ListTransactions returns a page of ledger entries. Customers are scoped
// to entries touching their own accounts.
func (s *LedgerService) ListTransactions(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.Transaction, domain.Pagination, error) {
	opts = scopeToActor(actor, opts)
	transactions, total, err := s.repo.ListTransactions(ctx, opts)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return transactions, domain.NewPagination(total, opts), nil
}

// scopeToActor pins list reads to the actor's own records unless the actor
// is an admin, in which case the requested filter stands.
func scopeToActor(actor domain.Actor, opts domain.ListOptions) domain.ListOptions {
	opts = opts.Normalize()
	if actor.Role != domain.RoleAdmin {
		userID := actor.UserID
		opts.UserID = &userID
	}
	return opts
}

func (s *LedgerService) publishTransaction(ctx context.Context, userID int64, txn *domain.Transaction) {
	publishEvent(ctx, s.events, s.eventExchange, domain.LedgerEvent{
		Name:      domain.EventTransactionCompleted,
		UserID:    userID,
		Reference: txn.Reference,
		Amount:    txn.Amount,
		Timestamp: time.Now(),
	})
}

// publishEvent fans an event out after a successful commit. Publishing is
// best-effort: a broker failure is logged, never propagated.
func publishEvent(ctx context.Context, events rabbitmq.Publisher, exchange string, event domain.LedgerEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, exchange, event.Name, event); err != nil {
		log.Printf("level=warn component=events msg=\"event publish failed\" routing_key=%s err=%v", event.Name, err)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
