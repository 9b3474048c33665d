/**
 * @description
 * The atomic money-movement operations of the PostgreSQL repository. Each
 * operation locks the affected account rows with SELECT ... FOR UPDATE,
 * validates ownership and funds against the locked balance, applies the
 * mutation, and appends the ledger entry, all inside one transaction, so a
 * reader never observes a transaction row without its balance change.
 *
 * @dependencies
 * - github.com/google/uuid: Transaction reference generation.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/shopspring/decimal: Monetary arithmetic.
 */

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, reference, source_account_id, destination_account_id, loan_id, type, amount, status, description, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.Reference,
		&txn.SourceAccountID,
		&txn.DestinationAccountID,
		&txn.LoanID,
		&txn.Type,
		&txn.Amount,
		&txn.Status,
		&txn.Description,
		&txn.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// lockAccount reads an account row under FOR UPDATE inside tx. Subsequent
// balance checks against the returned snapshot are safe until commit.
func lockAccount(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1 FOR UPDATE`, accountColumns)
	return scanAccount(tx.QueryRow(ctx, query, id))
}

func setBalance(ctx context.Context, tx pgx.Tx, accountID int64, balance decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`, balance, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// insertTransaction appends one COMPLETED ledger entry inside tx.
func insertTransaction(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) (*domain.Transaction, error) {
	txn.Reference = uuid.New().String()
	txn.Status = domain.TransactionStatusCompleted
	query := fmt.Sprintf(`
		INSERT INTO transactions (reference, source_account_id, destination_account_id, loan_id, type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, transactionColumns)
	inserted, err := scanTransaction(tx.QueryRow(ctx, query,
		txn.Reference, txn.SourceAccountID, txn.DestinationAccountID, txn.LoanID,
		txn.Type, txn.Amount, txn.Status, txn.Description))
	if err != nil {
		return nil, mapInsertErr(err)
	}
	return inserted, nil
}

// DepositAtomic credits an actor-owned account and appends the DEPOSIT entry
// in one transaction.
func (r *PostgresRepository) DepositAtomic(ctx context.Context, p DepositParams) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		account, err := lockAccount(ctx, tx, p.AccountID)
		if err != nil {
			return err
		}
		if !account.OwnedBy(p.ActorID) {
			return ErrAccountNotFound
		}
		if err := setBalance(ctx, tx, account.ID, account.Balance.Add(p.Amount)); err != nil {
			return err
		}
		result, err = insertTransaction(ctx, tx, &domain.Transaction{
			DestinationAccountID: &account.ID,
			Type:                 domain.TransactionTypeDeposit,
			Amount:               p.Amount,
			Description:          p.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WithdrawAtomic debits an actor-owned account and appends the WITHDRAWAL
// entry. The funds check happens against the locked row, so concurrent
// withdrawals serialize and the balance can never go negative.
func (r *PostgresRepository) WithdrawAtomic(ctx context.Context, p DepositParams) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		account, err := lockAccount(ctx, tx, p.AccountID)
		if err != nil {
			return err
		}
		if !account.OwnedBy(p.ActorID) {
			return ErrAccountNotFound
		}
		if account.Balance.LessThan(p.Amount) {
			return ErrInsufficientFunds
		}
		if err := setBalance(ctx, tx, account.ID, account.Balance.Sub(p.Amount)); err != nil {
			return err
		}
		result, err = insertTransaction(ctx, tx, &domain.Transaction{
			SourceAccountID: &account.ID,
			Type:            domain.TransactionTypeWithdrawal,
			Amount:          p.Amount,
			Description:     p.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferAtomic moves funds between two accounts and appends one ledger
// entry carrying both legs. Rows are locked in ascending id order so two
// opposing transfers cannot deadlock.
func (r *PostgresRepository) TransferAtomic(ctx context.Context, p TransferParams) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		source, destination, err := lockAccountPair(ctx, tx, p.SourceAccountID, p.DestinationAccountID)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(p.Amount) {
			return ErrInsufficientFunds
		}
		if err := setBalance(ctx, tx, source.ID, source.Balance.Sub(p.Amount)); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, destination.ID, destination.Balance.Add(p.Amount)); err != nil {
			return err
		}
		result, err = insertTransaction(ctx, tx, &domain.Transaction{
			SourceAccountID:      &source.ID,
			DestinationAccountID: &destination.ID,
			LoanID:               p.LoanID,
			Type:                 p.Type,
			Amount:               p.Amount,
			Description:          p.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockAccountPair locks two distinct accounts in ascending id order and
// returns them as (source, destination).
func lockAccountPair(ctx context.Context, tx pgx.Tx, sourceID, destinationID int64) (*domain.Account, *domain.Account, error) {
	firstID, secondID := sourceID, destinationID
	if destinationID < sourceID {
		firstID, secondID = destinationID, sourceID
	}
	first, err := lockAccount(ctx, tx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockAccount(ctx, tx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if first.ID == sourceID {
		return first, second, nil
	}
	return second, first, nil
}

// FindTransactionByID retrieves one ledger entry.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return scanTransaction(r.db.QueryRow(ctx, query, id))
}

// ListTransactions returns one page of ledger entries plus the total count,
// newest first. When UserID is set, only entries touching one of the user's
// accounts are returned. Search matches the description case-insensitively.
func (r *PostgresRepository) ListTransactions(ctx context.Context, opts domain.ListOptions) ([]domain.Transaction, int64, error) {
	opts = opts.Normalize()

	where := []string{"TRUE"}
	args := []interface{}{}
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf(`(
			source_account_id IN (SELECT id FROM accounts WHERE user_id = $%d)
			OR destination_account_id IN (SELECT id FROM accounts WHERE user_id = $%d)
		)`, len(args), len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("description ILIKE $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *txn)
	}
	return transactions, total, rows.Err()
}
