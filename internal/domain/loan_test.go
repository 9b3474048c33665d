package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotalPayable(t *testing.T) {
	tests := []struct {
		name         string
		principal    string
		termInMonths int
		interestRate string
		want         string
	}{
		{
			name:         "one year at ten percent",
			principal:    "1000",
			termInMonths: 12,
			interestRate: "10",
			want:         "1100",
		},
		{
			name:         "six months halves the interest",
			principal:    "1000",
			termInMonths: 6,
			interestRate: "10",
			want:         "1050",
		},
		{
			name:         "two years doubles the interest",
			principal:    "1000",
			termInMonths: 24,
			interestRate: "10",
			want:         "1200",
		},
		{
			name:         "zero rate charges nothing",
			principal:    "500.50",
			termInMonths: 12,
			interestRate: "0",
			want:         "500.50",
		},
		{
			name:         "fractional result rounds to two places",
			principal:    "1000",
			termInMonths: 5,
			interestRate: "7",
			want:         "1029.17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotalPayable(
				decimal.RequireFromString(tt.principal),
				tt.termInMonths,
				decimal.RequireFromString(tt.interestRate),
			)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected total payable %s, got %s", tt.want, got)
			}
		})
	}
}

func TestApplyRepayment(t *testing.T) {
	tests := []struct {
		name        string
		payable     string
		amount      string
		wantPayable string
		wantStatus  string
	}{
		{
			name:        "partial repayment keeps loan active",
			payable:     "1100",
			amount:      "100",
			wantPayable: "1000",
			wantStatus:  LoanStatusActive,
		},
		{
			name:        "exact repayment pays the loan off",
			payable:     "1100",
			amount:      "1100",
			wantPayable: "0",
			wantStatus:  LoanStatusPaidOff,
		},
		{
			name:        "overpayment clamps payable at zero",
			payable:     "50",
			amount:      "80",
			wantPayable: "0",
			wantStatus:  LoanStatusPaidOff,
		},
		{
			name:        "first repayment on approved loan activates it",
			payable:     "1100",
			amount:      "0.01",
			wantPayable: "1099.99",
			wantStatus:  LoanStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{
				Status:       LoanStatusActive,
				TotalPayable: decimal.RequireFromString(tt.payable),
			}
			loan.ApplyRepayment(decimal.RequireFromString(tt.amount))
			if !loan.TotalPayable.Equal(decimal.RequireFromString(tt.wantPayable)) {
				t.Fatalf("expected payable %s, got %s", tt.wantPayable, loan.TotalPayable)
			}
			if loan.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, loan.Status)
			}
		})
	}
}

func TestLoanStateGuards(t *testing.T) {
	tests := []struct {
		status          string
		wantDecidable   bool
		wantDisbursable bool
		wantRepayable   bool
	}{
		{LoanStatusPending, true, false, false},
		{LoanStatusApproved, false, true, true},
		{LoanStatusActive, false, false, true},
		{LoanStatusPaidOff, false, false, false},
		{LoanStatusRejected, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			loan := &Loan{Status: tt.status}
			if got := loan.Decidable(); got != tt.wantDecidable {
				t.Fatalf("Decidable: expected %t, got %t", tt.wantDecidable, got)
			}
			if got := loan.Disbursable(); got != tt.wantDisbursable {
				t.Fatalf("Disbursable: expected %t, got %t", tt.wantDisbursable, got)
			}
			if got := loan.Repayable(); got != tt.wantRepayable {
				t.Fatalf("Repayable: expected %t, got %t", tt.wantRepayable, got)
			}
		})
	}
}
