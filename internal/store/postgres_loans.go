/**
 * @description
 * Loan persistence and the loan-engine atomic units. State checks run
 * against a FOR UPDATE-locked loan row and use the pure transition rules in
 * internal/domain, so concurrent decisions, disbursements, and repayments of
 * the same loan serialize on the row lock.
 *
 * Repayment is the four-effect unit of the design: debit payer, credit
 * system float, append the LOAN_REPAYMENT entry, and update the loan, all
 * or nothing.
 */

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/esaving/ledger-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

const loanColumns = `id, user_id, requested_amount, disbursed_amount, total_payable, interest_rate, term_in_months, status, approved_by_id, disbursement_date, created_at, updated_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var loan domain.Loan
	err := row.Scan(
		&loan.ID,
		&loan.UserID,
		&loan.RequestedAmount,
		&loan.DisbursedAmount,
		&loan.TotalPayable,
		&loan.InterestRate,
		&loan.TermInMonths,
		&loan.Status,
		&loan.ApprovedByID,
		&loan.DisbursementDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

func lockLoan(ctx context.Context, tx pgx.Tx, id int64) (*domain.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1 FOR UPDATE`, loanColumns)
	return scanLoan(tx.QueryRow(ctx, query, id))
}

// CreateLoan inserts a new PENDING loan.
func (r *PostgresRepository) CreateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := fmt.Sprintf(`
		INSERT INTO loans (user_id, requested_amount, disbursed_amount, total_payable, interest_rate, term_in_months, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, loanColumns)
	created, err := scanLoan(r.db.QueryRow(ctx, query,
		loan.UserID, loan.RequestedAmount, loan.DisbursedAmount, loan.TotalPayable,
		loan.InterestRate, loan.TermInMonths, loan.Status))
	if err != nil {
		return nil, mapInsertErr(err)
	}
	return created, nil
}

// FindLoanByID retrieves one loan.
func (r *PostgresRepository) FindLoanByID(ctx context.Context, id int64) (*domain.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1`, loanColumns)
	return scanLoan(r.db.QueryRow(ctx, query, id))
}

// DecideLoanAtomic approves or rejects a PENDING loan, recording the acting
// admin. Any other starting status fails ErrInvalidLoanState.
func (r *PostgresRepository) DecideLoanAtomic(ctx context.Context, loanID, adminID int64, approve bool) (*domain.Loan, error) {
	var result *domain.Loan
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		loan, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if !loan.Decidable() {
			return ErrInvalidLoanState
		}
		status := domain.LoanStatusRejected
		if approve {
			status = domain.LoanStatusApproved
		}
		query := fmt.Sprintf(`
			UPDATE loans SET status = $1, approved_by_id = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING %s
		`, loanColumns)
		result, err = scanLoan(tx.QueryRow(ctx, query, status, adminID, loanID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DisburseLoanAtomic releases an APPROVED loan's principal from the system
// float to the borrower's savings account, appends the LOAN_DISBURSEMENT
// entry, and activates the loan in one transaction.
func (r *PostgresRepository) DisburseLoanAtomic(ctx context.Context, loanID, adminID int64) (*domain.Loan, *domain.Transaction, error) {
	var (
		resultLoan *domain.Loan
		resultTxn  *domain.Transaction
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		loan, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if !loan.Disbursable() {
			return ErrInvalidLoanState
		}

		floatAccount, err := findSystemFloatAccount(ctx, tx)
		if err != nil {
			return err
		}
		borrowerAccount, err := findPrimaryAccountForUser(ctx, tx, loan.UserID)
		if err != nil {
			return err
		}

		source, destination, err := lockAccountPair(ctx, tx, floatAccount.ID, borrowerAccount.ID)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(loan.RequestedAmount) {
			return ErrInsufficientFunds
		}
		if err := setBalance(ctx, tx, source.ID, source.Balance.Sub(loan.RequestedAmount)); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, destination.ID, destination.Balance.Add(loan.RequestedAmount)); err != nil {
			return err
		}

		resultTxn, err = insertTransaction(ctx, tx, &domain.Transaction{
			SourceAccountID:      &source.ID,
			DestinationAccountID: &destination.ID,
			LoanID:               &loan.ID,
			Type:                 domain.TransactionTypeLoanDisbursement,
			Amount:               loan.RequestedAmount,
			Description:          "Loan disbursement",
		})
		if err != nil {
			return err
		}

		now := time.Now()
		query := fmt.Sprintf(`
			UPDATE loans SET status = $1, disbursed_amount = $2, disbursement_date = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING %s
		`, loanColumns)
		resultLoan, err = scanLoan(tx.QueryRow(ctx, query,
			domain.LoanStatusActive, loan.RequestedAmount, now, loan.ID))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return resultLoan, resultTxn, nil
}

// RepayLoanAtomic applies one repayment: payer debit, float credit, ledger
// entry, and the outstanding-payable update, committing together or not at
// all. Ownership of both the loan and the payer account is re-validated
// inside the unit.
func (r *PostgresRepository) RepayLoanAtomic(ctx context.Context, p RepayLoanParams) (*domain.Loan, *domain.Transaction, error) {
	var (
		resultLoan *domain.Loan
		resultTxn  *domain.Transaction
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		loan, err := lockLoan(ctx, tx, p.LoanID)
		if err != nil {
			return err
		}
		if loan.UserID != p.ActorID {
			return ErrForbidden
		}
		if !loan.Repayable() {
			return ErrInvalidLoanState
		}

		floatAccount, err := findSystemFloatAccount(ctx, tx)
		if err != nil {
			return err
		}
		payer, floatLocked, err := lockAccountPair(ctx, tx, p.AccountID, floatAccount.ID)
		if err != nil {
			return err
		}
		if !payer.OwnedBy(p.ActorID) {
			return ErrForbidden
		}
		if payer.Balance.LessThan(p.Amount) {
			return ErrInsufficientFunds
		}

		if err := setBalance(ctx, tx, payer.ID, payer.Balance.Sub(p.Amount)); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, floatLocked.ID, floatLocked.Balance.Add(p.Amount)); err != nil {
			return err
		}

		description := p.Description
		if description == "" {
			description = "Loan repayment"
		}
		resultTxn, err = insertTransaction(ctx, tx, &domain.Transaction{
			SourceAccountID:      &payer.ID,
			DestinationAccountID: &floatLocked.ID,
			LoanID:               &loan.ID,
			Type:                 domain.TransactionTypeLoanRepayment,
			Amount:               p.Amount,
			Description:          description,
		})
		if err != nil {
			return err
		}

		loan.ApplyRepayment(p.Amount)
		query := fmt.Sprintf(`
			UPDATE loans SET total_payable = $1, status = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING %s
		`, loanColumns)
		resultLoan, err = scanLoan(tx.QueryRow(ctx, query, loan.TotalPayable, loan.Status, loan.ID))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return resultLoan, resultTxn, nil
}

// findPrimaryAccountForUser returns the user's oldest savings account, the
// disbursement destination.
func findPrimaryAccountForUser(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE user_id = $1 AND account_type = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, accountColumns)
	return scanAccount(tx.QueryRow(ctx, query, userID, domain.AccountTypeSavings))
}

// ListLoans returns one page of loans plus the total count, newest first,
// optionally scoped to one user.
func (r *PostgresRepository) ListLoans(ctx context.Context, opts domain.ListOptions) ([]domain.Loan, int64, error) {
	opts = opts.Normalize()

	where := []string{"TRUE"}
	args := []interface{}{}
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM loans WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, loanColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		loans = append(loans, *loan)
	}
	return loans, total, rows.Err()
}
