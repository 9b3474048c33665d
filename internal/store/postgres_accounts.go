/**
 * @description
 * Account reads and creation for the PostgreSQL repository. Balance
 * mutations never live here: they are only reachable through the atomic
 * ledger operations in postgres_ledger.go.
 */

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, account_number, user_id, balance, account_type, status, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.UserID,
		&account.Balance,
		&account.AccountType,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByID retrieves one account by its numeric id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindAccountsByUserID retrieves all accounts owned by a user.
func (r *PostgresRepository) FindAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`, accountColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// FindSystemFloatAccount retrieves the provisioned system float account, the
// counterparty for loan disbursements and repayments.
func (r *PostgresRepository) FindSystemFloatAccount(ctx context.Context) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, floatAccountQuery, domain.AccountTypeSystemFloat))
	if err == ErrAccountNotFound {
		return nil, ErrFloatNotConfigured
	}
	return account, err
}

var floatAccountQuery = fmt.Sprintf(`SELECT %s FROM accounts WHERE account_type = $1 LIMIT 1`, accountColumns)

// findSystemFloatAccount is the tx-scoped variant used inside the loan
// atomic units. The returned row is not yet locked; callers lock it through
// lockAccountPair before touching its balance.
func findSystemFloatAccount(ctx context.Context, tx pgx.Tx) (*domain.Account, error) {
	account, err := scanAccount(tx.QueryRow(ctx, floatAccountQuery, domain.AccountTypeSystemFloat))
	if err == ErrAccountNotFound {
		return nil, ErrFloatNotConfigured
	}
	return account, err
}

// CreateAccount inserts a new account. A duplicate account number surfaces
// as ErrConflict.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO accounts (account_number, user_id, balance, account_type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, accountColumns)
	created, err := scanAccount(r.db.QueryRow(ctx, query,
		account.AccountNumber, account.UserID, account.Balance, account.AccountType, account.Status))
	if err != nil {
		return nil, mapInsertErr(err)
	}
	return created, nil
}

// ListAccounts returns one page of accounts plus the total row count.
// Search is a case-insensitive substring match on the account number.
func (r *PostgresRepository) ListAccounts(ctx context.Context, opts domain.ListOptions) ([]domain.Account, int64, error) {
	opts = opts.Normalize()

	where := []string{"TRUE"}
	args := []interface{}{}
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("account_number ILIKE $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM accounts WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, accountColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, total, rows.Err()
}
