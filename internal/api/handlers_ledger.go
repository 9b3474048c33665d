/**
 * @description
 * This file contains the HTTP handlers for the account-ledger endpoints:
 * deposits, withdrawals, transfers, and the account/transaction read paths.
 * Handlers parse the request, call the ledger service, and translate the
 * result into an HTTP response.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/domain: Request payloads and models.
 */

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/esaving/ledger-service/internal/domain"
)

// DepositHandler handles requests to credit an account.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=deposit outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	txn, err := h.ledger.Deposit(r.Context(), actor, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=deposit outcome=failed user_id=%d account_id=%d err=%v", actor.UserID, req.AccountID, err)
		h.writeServiceError(w, "deposit", err)
		return
	}

	log.Printf("level=info component=api endpoint=deposit outcome=completed user_id=%d account_id=%d reference=%s", actor.UserID, req.AccountID, txn.Reference)
	h.writeJSON(w, http.StatusCreated, txn)
}

// WithdrawHandler handles requests to debit an account.
func (h *Handlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=withdraw outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	txn, err := h.ledger.Withdraw(r.Context(), actor, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=withdraw outcome=failed user_id=%d account_id=%d err=%v", actor.UserID, req.AccountID, err)
		h.writeServiceError(w, "withdraw", err)
		return
	}

	log.Printf("level=info component=api endpoint=withdraw outcome=completed user_id=%d account_id=%d reference=%s", actor.UserID, req.AccountID, txn.Reference)
	h.writeJSON(w, http.StatusCreated, txn)
}

// TransferHandler handles requests to move funds between two accounts.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	txn, err := h.ledger.Transfer(r.Context(), actor, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=failed user_id=%d source=%d destination=%d err=%v", actor.UserID, req.SourceAccountID, req.DestinationAccountID, err)
		h.writeServiceError(w, "transfer", err)
		return
	}

	log.Printf("level=info component=api endpoint=transfer outcome=completed user_id=%d reference=%s", actor.UserID, txn.Reference)
	h.writeJSON(w, http.StatusCreated, txn)
}

// ListTransactionsHandler returns a page of ledger entries visible to the actor.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	transactions, pagination, err := h.ledger.ListTransactions(r.Context(), actor, parseListOptions(r))
	if err != nil {
		h.writeServiceError(w, "list_transactions", err)
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Data: transactions, Pagination: pagination})
}

// ListAccountsHandler returns a page of accounts visible to the actor.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	accounts, pagination, err := h.ledger.ListAccounts(r.Context(), actor, parseListOptions(r))
	if err != nil {
		h.writeServiceError(w, "list_accounts", err)
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Data: accounts, Pagination: pagination})
}

// MyAccountsHandler returns all accounts owned by the authenticated actor.
func (h *Handlers) MyAccountsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	accounts, err := h.ledger.MyAccounts(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, "my_accounts", err)
		return
	}

	h.writeJSON(w, http.StatusOK, accounts)
}

// GetAccountHandler returns a single account by id.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	accountID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := h.ledger.GetAccount(r.Context(), actor, accountID)
	if err != nil {
		h.writeServiceError(w, "get_account", err)
		return
	}

	h.writeJSON(w, http.StatusOK, account)
}
