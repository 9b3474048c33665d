package app

import (
	"context"
	"errors"
	"testing"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/esaving/ledger-service/internal/store"
)

type adminRepoStub struct {
	store.Repository

	approveCalled      bool
	approvedAccountNum string
	updateCalled       bool
	updatedStatus      string
}

func (s *adminRepoStub) ApproveUserAtomic(ctx context.Context, userID int64, accountNumber string) (*domain.User, error) {
	s.approveCalled = true
	s.approvedAccountNum = accountNumber
	return &domain.User{ID: userID, Role: domain.RoleCustomer, Status: domain.StatusActive}, nil
}

func (s *adminRepoStub) UpdateUserStatus(ctx context.Context, userID int64, status string) (*domain.User, error) {
	s.updateCalled = true
	s.updatedStatus = status
	return &domain.User{ID: userID, Status: status}, nil
}

func TestUpdateUserStatusRejectsUnknownStatus(t *testing.T) {
	repo := &adminRepoStub{}
	svc := NewAdminService(repo, nil, "")

	_, err := svc.UpdateUserStatus(context.Background(), 1, "FROZEN")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if repo.updateCalled || repo.approveCalled {
		t.Fatal("did not expect any repository write for an unknown status")
	}
}

func TestUpdateUserStatusActiveRoutesThroughApproval(t *testing.T) {
	repo := &adminRepoStub{}
	svc := NewAdminService(repo, nil, "")

	user, err := svc.UpdateUserStatus(context.Background(), 1, domain.StatusActive)
	if err != nil {
		t.Fatalf("expected activation to succeed, got %v", err)
	}
	if !repo.approveCalled {
		t.Fatal("expected activation to run the approval flow")
	}
	if repo.updateCalled {
		t.Fatal("did not expect the plain status update path for activation")
	}
	if user.Status != domain.StatusActive {
		t.Fatalf("expected ACTIVE user, got %s", user.Status)
	}
	if repo.approvedAccountNum == "" {
		t.Fatal("expected an account number for the provisioning side effect")
	}
}

func TestUpdateUserStatusDirectStatuses(t *testing.T) {
	for _, status := range []string{domain.StatusPending, domain.StatusInactive, domain.StatusSuspended} {
		t.Run(status, func(t *testing.T) {
			repo := &adminRepoStub{}
			svc := NewAdminService(repo, nil, "")

			user, err := svc.UpdateUserStatus(context.Background(), 1, status)
			if err != nil {
				t.Fatalf("expected status change to succeed, got %v", err)
			}
			if !repo.updateCalled || repo.updatedStatus != status {
				t.Fatalf("expected direct update to %s, got called=%t status=%s", status, repo.updateCalled, repo.updatedStatus)
			}
			if repo.approveCalled {
				t.Fatal("did not expect the approval flow")
			}
			if user.Status != status {
				t.Fatalf("expected %s user, got %s", status, user.Status)
			}
		})
	}
}

func TestNewAccountNumberShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		num := newAccountNumber()
		if len(num) < 14 {
			t.Fatalf("expected at least 14 digits, got %q", num)
		}
		for _, r := range num {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", num)
			}
		}
		seen[num] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected account numbers to be mostly unique, got %d distinct of 100", len(seen))
	}
}
