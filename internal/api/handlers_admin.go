/**
 * @description
 * This file contains the HTTP handlers for the admin endpoints: user
 * approval, generic user status changes, and the dashboard stats read.
 * All of these routes sit behind the ADMIN role middleware.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 */

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

type updateUserStatusRequest struct {
	Status string `json:"status"`
}

// ApproveUserHandler activates a pending user, provisioning a savings
// account for first-time customers.
func (h *Handlers) ApproveUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	userID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.admin.ApproveUser(r.Context(), userID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=approve_user outcome=failed admin_id=%d user_id=%d err=%v", actor.UserID, userID, err)
		h.writeServiceError(w, "approve_user", err)
		return
	}

	log.Printf("level=info component=api endpoint=approve_user outcome=completed admin_id=%d user_id=%d", actor.UserID, userID)
	h.writeJSON(w, http.StatusOK, user)
}

// UpdateUserStatusHandler applies an arbitrary status change to a user.
// Setting a user ACTIVE routes through the approval flow.
func (h *Handlers) UpdateUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	userID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req updateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	user, err := h.admin.UpdateUserStatus(r.Context(), userID, req.Status)
	if err != nil {
		log.Printf("level=warn component=api endpoint=update_user_status outcome=failed admin_id=%d user_id=%d status=%s err=%v", actor.UserID, userID, req.Status, err)
		h.writeServiceError(w, "update_user_status", err)
		return
	}

	log.Printf("level=info component=api endpoint=update_user_status outcome=completed admin_id=%d user_id=%d status=%s", actor.UserID, userID, user.Status)
	h.writeJSON(w, http.StatusOK, user)
}

// UserStatsHandler returns user totals by status for the admin dashboard.
func (h *Handlers) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.UserStats(r.Context())
	if err != nil {
		h.writeServiceError(w, "user_stats", err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}
