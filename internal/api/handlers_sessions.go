/**
 * @description
 * This file contains the HTTP handlers for session management: the internal
 * session-creation endpoint used by the upstream auth service, refresh-token
 * rotation, logout, and the session listing read path.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/domain: Models.
 */

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
)

type createSessionRequest struct {
	UserID     int64  `json:"user_id"`
	DeviceInfo string `json:"device_info"`
	IPAddress  string `json:"ip_address"`
}

type refreshSessionRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateSessionHandler handles the internal endpoint the auth service calls
// after verifying credentials. Creating a session deactivates every prior
// session for the user.
func (h *Handlers) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_session outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.UserID <= 0 {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	deviceInfo := req.DeviceInfo
	if deviceInfo == "" {
		deviceInfo = r.UserAgent()
	}
	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress = clientIP(r)
	}

	creds, err := h.sessions.CreateSession(r.Context(), req.UserID, deviceInfo, ipAddress)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_session outcome=failed user_id=%d err=%v", req.UserID, err)
		h.writeServiceError(w, "create_session", err)
		return
	}

	log.Printf("level=info component=api endpoint=create_session outcome=created user_id=%d", req.UserID)
	h.writeJSON(w, http.StatusCreated, creds)
}

// RefreshSessionHandler rotates a refresh token: the presented token's
// session is retired and a fresh session is issued in its place.
func (h *Handlers) RefreshSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=refresh_session outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.RefreshToken == "" {
		h.writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	creds, err := h.sessions.RefreshAccessToken(r.Context(), req.RefreshToken, r.UserAgent(), clientIP(r))
	if err != nil {
		log.Printf("level=warn component=api endpoint=refresh_session outcome=failed err=%v", err)
		h.writeServiceError(w, "refresh_session", err)
		return
	}

	h.writeJSON(w, http.StatusOK, creds)
}

// LogoutHandler deactivates every session belonging to the authenticated actor.
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Logout(r.Context(), actor.UserID); err != nil {
		h.writeServiceError(w, "logout", err)
		return
	}

	log.Printf("level=info component=api endpoint=logout outcome=completed user_id=%d", actor.UserID)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ListSessionsHandler returns a page of the actor's sessions.
func (h *Handlers) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	sessions, pagination, err := h.sessions.ListSessions(r.Context(), actor, parseListOptions(r))
	if err != nil {
		h.writeServiceError(w, "list_sessions", err)
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Data: sessions, Pagination: pagination})
}

// clientIP extracts the remote address, honoring the first X-Forwarded-For
// hop when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
