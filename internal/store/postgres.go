/**
 * @description
 * This file provides the shared plumbing of the PostgreSQL implementation of
 * the `Repository` interface: the repository struct, the bounded retry loop
 * for serialization conflicts, and translation of driver errors into the
 * store's typed failures.
 *
 * Concurrency model: every balance check-then-mutate runs between a
 * `SELECT ... FOR UPDATE` and the corresponding `UPDATE` inside a single
 * transaction. Two concurrent withdrawals against the same account therefore
 * serialize on the row lock; the loser re-reads the decremented balance and
 * fails with ErrInsufficientFunds instead of driving the balance negative.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	txMaxAttempts  = 3
	txRetryBackoff = 25 * time.Millisecond
)

// PostgresRepository is the pgx-backed implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository on top of a pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// inTx runs fn inside a transaction, retrying the whole unit on
// serialization failures and deadlocks up to txMaxAttempts. When retries are
// exhausted the error is surfaced as ErrTransient.
func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = r.runTx(ctx, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		if attempt < txMaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * txRetryBackoff):
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func (r *PostgresRepository) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isRetryableTxError reports whether the error is a transient conflict worth
// re-running the transaction for: serialization_failure (40001) or
// deadlock_detected (40P01).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// isUniqueViolation reports whether the error is a unique-constraint
// violation (23505), e.g. a duplicate account number or refresh token.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505"
}

// mapInsertErr translates driver errors from inserts into typed failures.
func mapInsertErr(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
