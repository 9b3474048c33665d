package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
)

type ledgerRepoStub struct {
	store.Repository

	account *domain.Account

	depositCalled  bool
	withdrawCalled bool
	transferCalled bool
	transferParams store.TransferParams

	listOpts domain.ListOptions
}

func (s *ledgerRepoStub) FindAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, store.ErrAccountNotFound
	}
	return s.account, nil
}

func (s *ledgerRepoStub) DepositAtomic(ctx context.Context, p store.DepositParams) (*domain.Transaction, error) {
	s.depositCalled = true
	return &domain.Transaction{Reference: "ref-deposit", Amount: p.Amount}, nil
}

func (s *ledgerRepoStub) WithdrawAtomic(ctx context.Context, p store.DepositParams) (*domain.Transaction, error) {
	s.withdrawCalled = true
	return &domain.Transaction{Reference: "ref-withdraw", Amount: p.Amount}, nil
}

func (s *ledgerRepoStub) TransferAtomic(ctx context.Context, p store.TransferParams) (*domain.Transaction, error) {
	s.transferCalled = true
	s.transferParams = p
	return &domain.Transaction{Reference: "ref-transfer", Amount: p.Amount}, nil
}

func (s *ledgerRepoStub) ListTransactions(ctx context.Context, opts domain.ListOptions) ([]domain.Transaction, int64, error) {
	s.listOpts = opts
	return nil, 0, nil
}

type rateLimiterStub struct {
	count int
	err   error
	calls int
}

func (s *rateLimiterStub) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	s.calls++
	return s.count, 0, s.err
}

func ptrInt64(v int64) *int64 { return &v }

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	repo := &ledgerRepoStub{}
	svc := NewLedgerService(repo, nil, "")

	_, err := svc.Deposit(context.Background(), domain.Actor{UserID: 1}, domain.DepositRequest{
		AccountID: 10,
		Amount:    decimal.Zero,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if repo.depositCalled {
		t.Fatal("did not expect the atomic deposit to run for an invalid amount")
	}
}

func TestWithdrawOverRateLimitIsRejected(t *testing.T) {
	repo := &ledgerRepoStub{}
	limiter := &rateLimiterStub{count: 6}
	svc := NewLedgerService(repo, nil, "")
	svc.SetRateLimiter(limiter, 5)

	_, err := svc.Withdraw(context.Background(), domain.Actor{UserID: 1}, domain.DepositRequest{
		AccountID: 10,
		Amount:    decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}
	if repo.withdrawCalled {
		t.Fatal("did not expect the atomic withdrawal to run past the rate limit")
	}
}

func TestWithdrawProceedsWhenLimiterUnavailable(t *testing.T) {
	repo := &ledgerRepoStub{}
	limiter := &rateLimiterStub{err: errors.New("redis down")}
	svc := NewLedgerService(repo, nil, "")
	svc.SetRateLimiter(limiter, 5)

	_, err := svc.Withdraw(context.Background(), domain.Actor{UserID: 1}, domain.DepositRequest{
		AccountID: 10,
		Amount:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("expected withdrawal to proceed past a limiter outage, got %v", err)
	}
	if !repo.withdrawCalled {
		t.Fatal("expected the atomic withdrawal to run")
	}
}

func TestTransferRejectsSameAccount(t *testing.T) {
	repo := &ledgerRepoStub{}
	svc := NewLedgerService(repo, nil, "")

	_, err := svc.Transfer(context.Background(), domain.Actor{UserID: 1}, domain.TransferRequest{
		SourceAccountID:      10,
		DestinationAccountID: 10,
		Amount:               decimal.NewFromInt(50),
	})
	if !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
	if repo.transferCalled {
		t.Fatal("did not expect the atomic transfer to run")
	}
}

func TestTransferFromForeignAccountLooksLikeMissingAccount(t *testing.T) {
	repo := &ledgerRepoStub{
		account: &domain.Account{ID: 10, UserID: ptrInt64(99)},
	}
	svc := NewLedgerService(repo, nil, "")

	_, err := svc.Transfer(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleCustomer}, domain.TransferRequest{
		SourceAccountID:      10,
		DestinationAccountID: 11,
		Amount:               decimal.NewFromInt(50),
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if repo.transferCalled {
		t.Fatal("did not expect the atomic transfer to run for a foreign source account")
	}
}

func TestTransferByOwnerRunsAtomicUnit(t *testing.T) {
	repo := &ledgerRepoStub{
		account: &domain.Account{ID: 10, UserID: ptrInt64(1)},
	}
	svc := NewLedgerService(repo, nil, "")

	txn, err := svc.Transfer(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleCustomer}, domain.TransferRequest{
		SourceAccountID:      10,
		DestinationAccountID: 11,
		Amount:               decimal.NewFromInt(50),
		Description:          "house money",
	})
	if err != nil {
		t.Fatalf("expected transfer to succeed, got %v", err)
	}
	if txn.Reference != "ref-transfer" {
		t.Fatalf("expected stub transaction, got %+v", txn)
	}
	if repo.transferParams.Type != domain.TransactionTypeTransfer {
		t.Fatalf("expected TRANSFER ledger type, got %q", repo.transferParams.Type)
	}
	if repo.transferParams.LoanID != nil {
		t.Fatal("did not expect a loan linkage on a plain transfer")
	}
}

func TestGetAccountForbiddenForForeignCustomer(t *testing.T) {
	repo := &ledgerRepoStub{
		account: &domain.Account{ID: 10, UserID: ptrInt64(99)},
	}
	svc := NewLedgerService(repo, nil, "")

	_, err := svc.GetAccount(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleCustomer}, 10)
	if !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.GetAccount(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 10); err != nil {
		t.Fatalf("expected admin read to succeed, got %v", err)
	}
}

func TestListTransactionsScopesCustomersToOwnRecords(t *testing.T) {
	repo := &ledgerRepoStub{}
	svc := NewLedgerService(repo, nil, "")

	foreign := int64(42)
	_, _, err := svc.ListTransactions(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleCustomer}, domain.ListOptions{UserID: &foreign})
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if repo.listOpts.UserID == nil || *repo.listOpts.UserID != 7 {
		t.Fatalf("expected customer list pinned to user 7, got %v", repo.listOpts.UserID)
	}

	_, _, err = svc.ListTransactions(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleAdmin}, domain.ListOptions{UserID: &foreign})
	if err != nil {
		t.Fatalf("expected admin list to succeed, got %v", err)
	}
	if repo.listOpts.UserID == nil || *repo.listOpts.UserID != 42 {
		t.Fatalf("expected admin filter to stand, got %v", repo.listOpts.UserID)
	}
}
