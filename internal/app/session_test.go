package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
)

type sessionRepoStub struct {
	store.Repository

	user    *domain.User
	session *domain.UserSession

	createdSessions  []*domain.UserSession
	deactivateCalled bool
}

func (s *sessionRepoStub) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, store.ErrUserNotFound
	}
	return s.user, nil
}

func (s *sessionRepoStub) CreateSessionAtomic(ctx context.Context, session *domain.UserSession) (*domain.UserSession, error) {
	s.createdSessions = append(s.createdSessions, session)
	created := *session
	created.ID = int64(len(s.createdSessions))
	created.Status = domain.StatusActive
	return &created, nil
}

func (s *sessionRepoStub) FindSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.UserSession, error) {
	if s.session == nil || s.session.RefreshToken != refreshToken {
		return nil, store.ErrSessionNotFound
	}
	return s.session, nil
}

func (s *sessionRepoStub) DeactivateUserSessions(ctx context.Context, userID int64, now time.Time) error {
	s.deactivateCalled = true
	return nil
}

type tokenGeneratorStub struct {
	next int
}

func (s *tokenGeneratorStub) NewRefreshToken() (string, error) {
	s.next++
	return fmt.Sprintf("token-%d", s.next), nil
}

func newTestSessionService(repo *sessionRepoStub, now time.Time) (*SessionService, *tokenGeneratorStub) {
	gen := &tokenGeneratorStub{}
	svc := NewSessionService(repo, gen, SessionConfig{
		JWTSecret:       "test-secret",
		JWTIssuer:       "esaving",
		AccessTokenTTL:  2 * time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	svc.now = func() time.Time { return now }
	return svc, gen
}

func TestCreateSessionRejectsInactiveUser(t *testing.T) {
	repo := &sessionRepoStub{
		user: &domain.User{ID: 1, Role: domain.RoleCustomer, Status: domain.StatusPending},
	}
	svc, _ := newTestSessionService(repo, time.Now())

	_, err := svc.CreateSession(context.Background(), 1, "cli", "127.0.0.1")
	if !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(repo.createdSessions) != 0 {
		t.Fatal("did not expect a session for an inactive user")
	}
}

func TestCreateSessionIssuesCredentials(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo := &sessionRepoStub{
		user: &domain.User{ID: 7, Role: domain.RoleCustomer, Status: domain.StatusActive},
	}
	svc, _ := newTestSessionService(repo, now)

	creds, err := svc.CreateSession(context.Background(), 7, "android", "10.0.0.1")
	if err != nil {
		t.Fatalf("expected session creation to succeed, got %v", err)
	}
	if creds.RefreshToken != "token-1" {
		t.Fatalf("expected generated refresh token, got %q", creds.RefreshToken)
	}
	if !creds.RefreshTokenExpiry.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry %v", creds.RefreshTokenExpiry)
	}

	if len(repo.createdSessions) != 1 {
		t.Fatalf("expected one session insert, got %d", len(repo.createdSessions))
	}
	session := repo.createdSessions[0]
	if session.UserID != 7 || session.RefreshToken != "token-1" || session.DeviceInfo != "android" || session.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected session row: %+v", session)
	}

	// The access token must verify with the configured secret and carry the
	// user's id and role.
	parsed, err := jwt.Parse(creds.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid access token, got err=%v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "7" {
		t.Fatalf("expected sub claim 7, got %v", claims["sub"])
	}
	if claims["role"] != domain.RoleCustomer {
		t.Fatalf("expected CUSTOMER role claim, got %v", claims["role"])
	}
	if claims["iss"] != "esaving" {
		t.Fatalf("expected esaving issuer, got %v", claims["iss"])
	}
}

func TestRefreshUnknownTokenLooksExpired(t *testing.T) {
	repo := &sessionRepoStub{}
	svc, _ := newTestSessionService(repo, time.Now())

	_, err := svc.RefreshAccessToken(context.Background(), "missing", "cli", "127.0.0.1")
	if !errors.Is(err, store.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestRefreshExpiredSessionIsRejected(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo := &sessionRepoStub{
		user: &domain.User{ID: 7, Role: domain.RoleCustomer, Status: domain.StatusActive},
		session: &domain.UserSession{
			UserID:       7,
			RefreshToken: "stale",
			Status:       domain.StatusActive,
			ExpiresAt:    now.Add(-time.Minute),
		},
	}
	svc, _ := newTestSessionService(repo, now)

	_, err := svc.RefreshAccessToken(context.Background(), "stale", "cli", "127.0.0.1")
	if !errors.Is(err, store.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if len(repo.createdSessions) != 0 {
		t.Fatal("did not expect rotation for an expired session")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo := &sessionRepoStub{
		user: &domain.User{ID: 7, Role: domain.RoleCustomer, Status: domain.StatusActive},
		session: &domain.UserSession{
			UserID:       7,
			RefreshToken: "current",
			Status:       domain.StatusActive,
			ExpiresAt:    now.Add(time.Hour),
		},
	}
	svc, _ := newTestSessionService(repo, now)

	creds, err := svc.RefreshAccessToken(context.Background(), "current", "cli", "127.0.0.1")
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if creds.RefreshToken == "current" {
		t.Fatal("expected a fresh refresh token, got the presented one back")
	}
	if len(repo.createdSessions) != 1 {
		t.Fatalf("expected one replacement session, got %d", len(repo.createdSessions))
	}
	if repo.createdSessions[0].UserID != 7 {
		t.Fatalf("expected rotation for user 7, got %d", repo.createdSessions[0].UserID)
	}
}

func TestLogoutDeactivatesSessions(t *testing.T) {
	repo := &sessionRepoStub{}
	svc, _ := newTestSessionService(repo, time.Now())

	if err := svc.Logout(context.Background(), 7); err != nil {
		t.Fatalf("expected logout to succeed, got %v", err)
	}
	if !repo.deactivateCalled {
		t.Fatal("expected sessions to be deactivated")
	}
}
