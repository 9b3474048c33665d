/**
 * @description
 * Session persistence for the PostgreSQL repository. Session creation is the
 * single-active-session atomic unit: all prior sessions for the user are
 * deactivated and the new ACTIVE row inserted in one transaction, so two
 * concurrent logins can never both leave an ACTIVE session behind.
 */

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, user_id, refresh_token, device_info, ip_address, status, expires_at, created_at`

func scanSession(row pgx.Row) (*domain.UserSession, error) {
	var session domain.UserSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.DeviceInfo,
		&session.IPAddress,
		&session.Status,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func deactivateSessions(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_sessions SET status = $1, expires_at = $2
		WHERE user_id = $3 AND status = $4
	`, domain.StatusInactive, now, userID, domain.StatusActive)
	return err
}

// CreateSessionAtomic deactivates every prior session for the user and
// inserts the new ACTIVE one, as a single transaction. A duplicate refresh
// token surfaces as ErrConflict.
func (r *PostgresRepository) CreateSessionAtomic(ctx context.Context, session *domain.UserSession) (*domain.UserSession, error) {
	var result *domain.UserSession
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if err := deactivateSessions(ctx, tx, session.UserID, time.Now()); err != nil {
			return err
		}
		query := fmt.Sprintf(`
			INSERT INTO user_sessions (user_id, refresh_token, device_info, ip_address, status, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING %s
		`, sessionColumns)
		created, err := scanSession(tx.QueryRow(ctx, query,
			session.UserID, session.RefreshToken, session.DeviceInfo,
			session.IPAddress, domain.StatusActive, session.ExpiresAt))
		if err != nil {
			return mapInsertErr(err)
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindSessionByRefreshToken looks a session up by its unique refresh token.
func (r *PostgresRepository) FindSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.UserSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_sessions WHERE refresh_token = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, refreshToken))
}

// DeactivateUserSessions deactivates all of a user's sessions (logout).
func (r *PostgresRepository) DeactivateUserSessions(ctx context.Context, userID int64, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET status = $1, expires_at = $2
		WHERE user_id = $3 AND status = $4
	`, domain.StatusInactive, now, userID, domain.StatusActive)
	return err
}

// ListSessions returns one page of a user's sessions, newest first. Search
// matches device info or IP address case-insensitively.
func (r *PostgresRepository) ListSessions(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.UserSession, int64, error) {
	opts = opts.Normalize()

	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("(device_info ILIKE $%d OR ip_address ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM user_sessions WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM user_sessions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, sessionColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []domain.UserSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, total, rows.Err()
}
