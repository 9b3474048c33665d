package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/esaving/ledger-service/internal/domain"
)

const testSecret = "test-secret"
const testIssuer = "esaving"

func signTestToken(t *testing.T, userID int64, role, issuer string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role,
		"iss":  issuer,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestActorAuthMiddleware(t *testing.T) {
	var gotActor domain.Actor
	var handlerCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		gotActor, _ = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := ActorAuthMiddleware(testSecret, testIssuer)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signTestToken(t, 7, domain.RoleCustomer, testIssuer, -time.Minute),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong issuer",
			authHeader: "Bearer " + signTestToken(t, 7, domain.RoleCustomer, "someone-else", time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + signTestToken(t, 7, domain.RoleCustomer, testIssuer, time.Hour),
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			req := httptest.NewRequest(http.MethodGet, "/accounts/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if !handlerCalled {
					t.Fatal("expected the wrapped handler to run")
				}
				if gotActor.UserID != 7 || gotActor.Role != domain.RoleCustomer {
					t.Fatalf("unexpected actor on context: %+v", gotActor)
				}
			} else if handlerCalled {
				t.Fatal("did not expect the wrapped handler to run")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ActorAuthMiddleware(testSecret, testIssuer)(RequireRole(domain.RoleAdmin)(next))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 7, domain.RoleCustomer, testIssuer, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on admin route, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, domain.RoleAdmin, testIssuer, time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestInternalKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{name: "matching key", configured: "secret-key", provided: "secret-key", wantStatus: http.StatusOK},
		{name: "wrong key", configured: "secret-key", provided: "other", wantStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "secret-key", provided: "", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured endpoint", configured: "", provided: "anything", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := InternalKeyMiddleware(tt.configured)(next)
			req := httptest.NewRequest(http.MethodPost, "/internal/sessions", nil)
			if tt.provided != "" {
				req.Header.Set("X-Internal-Api-Key", tt.provided)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
