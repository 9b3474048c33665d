/**
 * @description
 * This file contains the admin service: user approval (which provisions the
 * customer's first savings account inside the same atomic unit as the status
 * change), generic status updates, and the dashboard counters.
 */

package app

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
	"github.com/esaving/ledger-service/pkg/rabbitmq"
)

// AdminService owns the user approval flow and admin reads.
type AdminService struct {
	repo          store.Repository
	events        rabbitmq.Publisher
	eventExchange string
}

// NewAdminService creates the admin service. events may be nil.
func NewAdminService(repo store.Repository, events rabbitmq.Publisher, eventExchange string) *AdminService {
	return &AdminService{repo: repo, events: events, eventExchange: eventExchange}
}

// ApproveUser activates a user; a customer without accounts gets a fresh
// zero-balance savings account in the same atomic unit.
func (s *AdminService) ApproveUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.ApproveUserAtomic(ctx, userID, newAccountNumber())
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.events, s.eventExchange, domain.LedgerEvent{
		Name:      domain.EventUserApproved,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	return user, nil
}

// UpdateUserStatus sets a user's lifecycle status. Approval must go through
// ApproveUser so the account-provisioning side effect is not skipped.
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID int64, status string) (*domain.User, error) {
	switch status {
	case domain.StatusActive:
		return s.ApproveUser(ctx, userID)
	case domain.StatusPending, domain.StatusInactive, domain.StatusSuspended:
		return s.repo.UpdateUserStatus(ctx, userID, status)
	default:
		return nil, ErrInvalidStatus
	}
}

// UserStats returns the user counts by lifecycle status.
func (s *AdminService) UserStats(ctx context.Context) (*domain.UserStats, error) {
	return s.repo.CountUsersByStatus(ctx)
}

// newAccountNumber derives a unique account number from the current time
// plus random entropy; the accounts table's unique constraint backstops the
// rare collision as ErrConflict.
func newAccountNumber() string {
	var suffix [2]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("%d%04d", time.Now().UnixMilli(), binary.BigEndian.Uint16(suffix[:])%10000)
}
