/**
 * @description
 * This file sets up the HTTP router for the ledger-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication and role enforcement.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/esaving/ledger-service/internal/domain"
)

// RouterConfig carries the secrets the router's middleware needs.
type RouterConfig struct {
	JWTSecret      string
	JWTIssuer      string
	InternalAPIKey string
}

// LedgerRoutes creates and returns a new router for the ledger service.
func LedgerRoutes(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Service-to-service session creation, guarded by the shared key.
	r.Group(func(r chi.Router) {
		r.Use(InternalKeyMiddleware(cfg.InternalAPIKey))
		r.Post("/internal/sessions", h.CreateSessionHandler)
	})

	// Refresh token rotation carries its own credential.
	r.Post("/sessions/refresh", h.RefreshSessionHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(ActorAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

		// Account ledger endpoints.
		r.Post("/transactions/deposit", h.DepositHandler)
		r.Post("/transactions/withdraw", h.WithdrawHandler)
		r.Post("/transactions/transfer", h.TransferHandler)
		r.Get("/transactions", h.ListTransactionsHandler)

		r.Get("/accounts", h.ListAccountsHandler)
		r.Get("/accounts/me", h.MyAccountsHandler)
		r.Get("/accounts/{id}", h.GetAccountHandler)

		// Loan endpoints.
		r.Post("/loans", h.RequestLoanHandler)
		r.Get("/loans", h.ListLoansHandler)
		r.Get("/loans/{id}", h.GetLoanHandler)
		r.Post("/loans/{id}/repay", h.RepayLoanHandler)

		// Session endpoints.
		r.Post("/sessions/logout", h.LogoutHandler)
		r.Get("/sessions", h.ListSessionsHandler)

		// Admin-only endpoints.
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleAdmin))

			r.Post("/loans/{id}/approve", h.ApproveLoanHandler)
			r.Post("/loans/{id}/reject", h.RejectLoanHandler)
			r.Post("/loans/{id}/disburse", h.DisburseLoanHandler)
			r.Post("/users/{id}/approve", h.ApproveUserHandler)
			r.Patch("/users/{id}/status", h.UpdateUserStatusHandler)
			r.Get("/admin/stats", h.UserStatsHandler)
		})
	})

	return r
}
