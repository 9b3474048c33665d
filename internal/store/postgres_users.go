/**
 * @description
 * User reads and the approval flow for the PostgreSQL repository. The
 * ledger-service does not own registration; it reads users for actor context
 * and advances their status. Approving a customer provisions their first
 * savings account in the same transaction as the status change.
 */

package store

import (
	"context"
	"fmt"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, first_name, last_name, role, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves one user.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// ApproveUserAtomic activates a user and, for a customer without any
// account, provisions a zero-balance savings account, both in one
// transaction. A duplicate account number surfaces as ErrConflict.
func (r *PostgresRepository) ApproveUserAtomic(ctx context.Context, userID int64, accountNumber string) (*domain.User, error) {
	var result *domain.User
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 FOR UPDATE`, userColumns)
		user, err := scanUser(tx.QueryRow(ctx, query, userID))
		if err != nil {
			return err
		}

		if user.Role == domain.RoleCustomer {
			var accountCount int
			if err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID).Scan(&accountCount); err != nil {
				return err
			}
			if accountCount == 0 {
				_, err := tx.Exec(ctx, `
					INSERT INTO accounts (account_number, user_id, balance, account_type, status)
					VALUES ($1, $2, $3, $4, $5)
				`, accountNumber, userID, decimal.Zero, domain.AccountTypeSavings, domain.StatusActive)
				if err != nil {
					return mapInsertErr(err)
				}
			}
		}

		updateQuery := fmt.Sprintf(`
			UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING %s
		`, userColumns)
		result, err = scanUser(tx.QueryRow(ctx, updateQuery, domain.StatusActive, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateUserStatus sets a user's lifecycle status without the approval side
// effects.
func (r *PostgresRepository) UpdateUserStatus(ctx context.Context, userID int64, status string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING %s
	`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, status, userID))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CountUsersByStatus aggregates the admin dashboard counters in one query.
func (r *PostgresRepository) CountUsersByStatus(ctx context.Context) (*domain.UserStats, error) {
	var stats domain.UserStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM users
	`, domain.StatusPending, domain.StatusActive, domain.StatusInactive, domain.StatusSuspended).Scan(
		&stats.TotalUsers,
		&stats.PendingUsers,
		&stats.ActiveUsers,
		&stats.InactiveUsers,
		&stats.SuspendedUsers,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
