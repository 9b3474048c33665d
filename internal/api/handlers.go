/**
 * @description
 * This file contains the shared plumbing for the ledger-service's HTTP
 * handlers: the Handlers container that bundles the application services,
 * JSON response helpers, request parsing helpers, and the translation of
 * service errors into HTTP status codes.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http, strconv: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/esaving/ledger-service/internal/app"
	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
)

// Handlers holds the application services that handlers will use.
type Handlers struct {
	ledger   *app.LedgerService
	loans    *app.LoanService
	sessions *app.SessionService
	admin    *app.AdminService
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(ledger *app.LedgerService, loans *app.LoanService, sessions *app.SessionService, admin *app.AdminService) *Handlers {
	return &Handlers{
		ledger:   ledger,
		loans:    loans,
		sessions: sessions,
		admin:    admin,
	}
}

// listResponse is the envelope for paginated list endpoints.
type listResponse struct {
	Data       interface{}       `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError translates a service-layer error into an HTTP response.
func (h *Handlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrLoanNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrForbidden):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrSessionExpired):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrInvalidLoanState), errors.Is(err, store.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrFloatNotConfigured):
		log.Printf("level=error component=api endpoint=%s msg=\"system float account missing\"", endpoint)
		h.writeError(w, http.StatusInternalServerError, "Service is not fully provisioned")
	case errors.Is(err, store.ErrTransient):
		h.writeError(w, http.StatusServiceUnavailable, "Temporarily unable to process the request, please retry")
	case errors.Is(err, app.ErrTooManyRequests):
		h.writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrInvalidTerm),
		errors.Is(err, app.ErrInvalidRate),
		errors.Is(err, app.ErrSameAccount),
		errors.Is(err, app.ErrInvalidStatus):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"unhandled service error\" err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireActor fetches the authenticated actor, writing a 401 when absent.
func (h *Handlers) requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := GetActor(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Could not get actor from context")
	}
	return actor, ok
}

// idParam parses a numeric id from the named URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// parseListOptions reads the page, limit, and search query parameters.
// Out-of-range values are normalized by the service layer.
func parseListOptions(r *http.Request) domain.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.ListOptions{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	}
}
