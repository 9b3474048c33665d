/**
 * @description
 * This file contains the session-rotation service. A login or refresh
 * produces exactly one ACTIVE session per user: the repository's atomic
 * create deactivates every prior session before inserting the new one.
 * Access tokens are HS256 JWTs; refresh tokens come from the pkg/token
 * generator (96 hex characters of crypto/rand entropy).
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Access-token signing.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/token: Refresh-token generation.
 */

package app

import (
	"context"
	"strconv"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
	"github.com/esaving/ledger-service/pkg/token"
	"github.com/golang-jwt/jwt/v5"
)

// SessionConfig carries the token parameters for session issuance.
type SessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// SessionService owns refresh-token sessions and access-token issuance.
type SessionService struct {
	repo   store.Repository
	tokens token.Generator
	cfg    SessionConfig
	now    func() time.Time
}

// NewSessionService creates the session service.
func NewSessionService(repo store.Repository, tokens token.Generator, cfg SessionConfig) *SessionService {
	return &SessionService{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
	}
}

// CreateSession issues credentials for an already-authenticated user and
// rotates their session: all prior sessions are deactivated and the new
// ACTIVE one inserted in a single atomic unit.
func (s *SessionService) CreateSession(ctx context.Context, userID int64, deviceInfo, ipAddress string) (*domain.Credentials, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.StatusActive {
		return nil, store.ErrForbidden
	}

	refreshToken, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.cfg.RefreshTokenTTL)

	if _, err := s.repo.CreateSessionAtomic(ctx, &domain.UserSession{
		UserID:       userID,
		RefreshToken: refreshToken,
		DeviceInfo:   deviceInfo,
		IPAddress:    ipAddress,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return nil, err
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.Credentials{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: expiresAt,
	}, nil
}

// RefreshAccessToken re-issues credentials for a valid ACTIVE, unexpired
// session and rotates it: the presented refresh token is retired as part of
// creating the replacement session.
func (s *SessionService) RefreshAccessToken(ctx context.Context, refreshToken, deviceInfo, ipAddress string) (*domain.Credentials, error) {
	session, err := s.repo.FindSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if err == store.ErrSessionNotFound {
			return nil, store.ErrSessionExpired
		}
		return nil, err
	}
	if !session.Active(s.now()) {
		return nil, store.ErrSessionExpired
	}
	return s.CreateSession(ctx, session.UserID, deviceInfo, ipAddress)
}

// Logout deactivates all of the user's sessions.
func (s *SessionService) Logout(ctx context.Context, userID int64) error {
	return s.repo.DeactivateUserSessions(ctx, userID, s.now())
}

// ListSessions returns a page of the actor's own sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.UserSession, domain.Pagination, error) {
	opts = opts.Normalize()
	sessions, total, err := s.repo.ListSessions(ctx, actor.UserID, opts)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return sessions, domain.NewPagination(total, opts), nil
}

func (s *SessionService) signAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.Role,
		"iss":  s.cfg.JWTIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.AccessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
