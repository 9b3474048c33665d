/**
 * @description
 * This file contains the HTTP handlers for the loan endpoints: loan requests,
 * the admin decision and disbursement actions, repayments, and the loan read
 * paths.
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

// RequestLoanHandler handles requests to open a new loan.
func (h *Handlers) RequestLoanHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	var req domain.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=request_loan outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	loan, err := h.loans.RequestLoan(r.Context(), actor, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=request_loan outcome=failed user_id=%d err=%v", actor.UserID, err)
		h.writeServiceError(w, "request_loan", err)
		return
	}

	log.Printf("level=info component=api endpoint=request_loan outcome=created user_id=%d loan_id=%d", actor.UserID, loan.ID)
	h.writeJSON(w, http.StatusCreated, loan)
}

// ApproveLoanHandler handles admin approval of a pending loan.
func (h *Handlers) ApproveLoanHandler(w http.ResponseWriter, r *http.Request) {
	h.decideLoan(w, r, true)
}

// RejectLoanHandler handles admin rejection of a pending loan.
func (h *Handlers) RejectLoanHandler(w http.ResponseWriter, r *http.Request) {
	h.decideLoan(w, r, false)
}

func (h *Handlers) decideLoan(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	loanID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	var loan *domain.Loan
	endpoint := "approve_loan"
	if approve {
		loan, err = h.loans.ApproveLoan(r.Context(), actor.UserID, loanID)
	} else {
		endpoint = "reject_loan"
		loan, err = h.loans.RejectLoan(r.Context(), actor.UserID, loanID)
	}
	if err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=failed admin_id=%d loan_id=%d err=%v", endpoint, actor.UserID, loanID, err)
		h.writeServiceError(w, endpoint, err)
		return
	}

	log.Printf("level=info component=api endpoint=%s outcome=completed admin_id=%d loan_id=%d status=%s", endpoint, actor.UserID, loanID, loan.Status)
	h.writeJSON(w, http.StatusOK, loan)
}

// DisburseLoanHandler handles the admin action that moves an approved loan's
// principal from the float account to the borrower.
func (h *Handlers) DisburseLoanHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	loanID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	loan, err := h.loans.DisburseLoan(r.Context(), actor.UserID, loanID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=disburse_loan outcome=failed admin_id=%d loan_id=%d err=%v", actor.UserID, loanID, err)
		h.writeServiceError(w, "disburse_loan", err)
		return
	}

	log.Printf("level=info component=api endpoint=disburse_loan outcome=completed admin_id=%d loan_id=%d", actor.UserID, loanID)
	h.writeJSON(w, http.StatusOK, loan)
}

// RepayLoanHandler handles a borrower's repayment against an open loan.
func (h *Handlers) RepayLoanHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	loanID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	var req domain.LoanRepayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=repay_loan outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	loan, err := h.loans.RepayLoan(r.Context(), actor, loanID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=repay_loan outcome=failed user_id=%d loan_id=%d err=%v", actor.UserID, loanID, err)
		h.writeServiceError(w, "repay_loan", err)
		return
	}

	log.Printf("level=info component=api endpoint=repay_loan outcome=completed user_id=%d loan_id=%d status=%s", actor.UserID, loanID, loan.Status)
	h.writeJSON(w, http.StatusOK, loan)
}

// GetLoanHandler returns a single loan by id.
func (h *Handlers) GetLoanHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	loanID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid loan ID")
		return
	}

	loan, err := h.loans.GetLoan(r.Context(), actor, loanID)
	if err != nil {
		h.writeServiceError(w, "get_loan", err)
		return
	}

	h.writeJSON(w, http.StatusOK, loan)
}

// ListLoansHandler returns a page of loans visible to the actor.
func (h *Handlers) ListLoansHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	loans, pagination, err := h.loans.ListLoans(r.Context(), actor, parseListOptions(r))
	if err != nil {
		h.writeServiceError(w, "list_loans", err)
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Data: loans, Pagination: pagination})
}
