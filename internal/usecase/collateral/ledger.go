// Package collateral implements the collateral ledger: it is the only writer
// of deposited/remaining/status on collateral records, and the only place a
// completeness verdict is produced.
package collateral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainLoan "microcredit-backend/internal/domain/loan"
	"microcredit-backend/internal/domain/uow"
	"microcredit-backend/internal/metrics"
)

type Ledger struct {
	uow uow.UnitOfWork
	log *logrus.Logger
}

func NewLedger(tx uow.UnitOfWork, log *logrus.Logger) *Ledger {
	return &Ledger{uow: tx, log: log}
}

// GroupSummary is the read-model companion of the group verdict.
type GroupSummary struct {
	CompleteCount  int             `json:"complete_count"`
	TotalMembers   int             `json:"total_members"`
	TotalRequired  decimal.Decimal `json:"total_required"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// RecordDeposit adds amount to the record's deposited balance and rederives
// remaining and status. The row is locked for the duration so concurrent
// deposits on one record serialize.
func (g *Ledger) RecordDeposit(ctx context.Context, collateralID string, amount decimal.Decimal, depositDate time.Time) (*domainCollateral.Record, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("deposit %s on %s: %w", amount, collateralID, domainCollateral.ErrInvalidAmount)
	}

	var out *domainCollateral.Record
	err := g.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Collaterals.GetByCollateralIDForUpdate(ctx, collateralID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("collateral %s: %w", collateralID, domainCollateral.ErrNotFound)
			}
			return err
		}
		if rec.Status == domainCollateral.StatusRefunded {
			return fmt.Errorf("collateral %s: %w", collateralID, domainCollateral.ErrAlreadyTerminal)
		}

		rec.Deposited = rec.Deposited.Add(amount)
		rec.Remaining = remainingOf(rec.Required, rec.Deposited)
		if rec.Remaining.IsZero() {
			rec.Status = domainCollateral.StatusComplete
		} else {
			rec.Status = domainCollateral.StatusPartial
		}
		d := depositDate
		rec.LastDepositOn = &d

		if err := r.Collaterals.Save(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DepositAccepted()
	g.log.Infof("collateral %s: deposit %s, deposited=%s remaining=%s status=%s",
		collateralID, amount, out.Deposited, out.Remaining, out.Status)
	return out, nil
}

// RecordWithdrawal refunds the collateral. Preconditions are checked before
// any mutation: the record must be complete, the amount must not overdraw,
// and the owner must be fully repaid — the member's own obligations for
// group loans, the whole loan for individual ones.
func (g *Ledger) RecordWithdrawal(ctx context.Context, collateralID string, amount decimal.Decimal, withdrawalDate time.Time) (*domainCollateral.Record, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("withdrawal %s on %s: %w", amount, collateralID, domainCollateral.ErrInvalidAmount)
	}

	var out *domainCollateral.Record
	err := g.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Collaterals.GetByCollateralIDForUpdate(ctx, collateralID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("collateral %s: %w", collateralID, domainCollateral.ErrNotFound)
			}
			return err
		}
		if rec.Status == domainCollateral.StatusRefunded {
			return fmt.Errorf("collateral %s: %w", collateralID, domainCollateral.ErrAlreadyTerminal)
		}
		if rec.Status != domainCollateral.StatusComplete {
			return fmt.Errorf("collateral %s is %s: %w", collateralID, rec.Status, domainCollateral.ErrPrerequisiteNotMet)
		}
		if amount.GreaterThan(rec.Deposited) {
			return fmt.Errorf("withdrawal %s exceeds deposited %s: %w", amount, rec.Deposited, domainCollateral.ErrInvalidAmount)
		}

		if err := g.ensureOwnerRepaid(ctx, r, rec); err != nil {
			return err
		}

		rec.Status = domainCollateral.StatusRefunded
		d := withdrawalDate
		rec.RefundedOn = &d
		// deposited/remaining stay as the historical record

		if err := r.Collaterals.Save(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.WithdrawalAccepted()
	g.log.Infof("collateral %s: refunded %s on %s", collateralID, amount, withdrawalDate.Format("2006-01-02"))
	return out, nil
}

// ensureOwnerRepaid applies the single repayment-completeness predicate:
// every obligation attributable to the record's owner must be paid.
func (g *Ledger) ensureOwnerRepaid(ctx context.Context, r uow.Repos, rec *domainCollateral.Record) error {
	l, err := r.Loans.GetByID(ctx, rec.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("loan of collateral %s: %w", rec.CollateralID, domainLoan.ErrNotFound)
		}
		return err
	}

	if rec.MemberID != "" {
		n, err := r.Obligations.CountUnpaidForMember(ctx, rec.LoanID, rec.MemberID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("member %s of loan %s has %d unpaid obligations: %w",
				rec.MemberID, l.LoanID, n, domainCollateral.ErrPrerequisiteNotMet)
		}
		return nil
	}

	if l.Status != domainLoan.StatusCompleted {
		return fmt.Errorf("loan %s is %s: %w", l.LoanID, l.Status, domainCollateral.ErrPrerequisiteNotMet)
	}
	n, err := r.Obligations.CountUnpaid(ctx, rec.LoanID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("loan %s has %d unpaid obligations: %w", l.LoanID, n, domainCollateral.ErrPrerequisiteNotMet)
	}
	return nil
}

// IsComplete is the individual-loan verdict. The collateral table is the
// sole source of truth; the blocked-savings ledger is only cross-checked.
func (g *Ledger) IsComplete(ctx context.Context, loanID string) (bool, error) {
	var complete bool
	err := g.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loan %s: %w", loanID, domainLoan.ErrNotFound)
			}
			return err
		}
		rec, err := r.Collaterals.GetByLoanID(ctx, l.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("collateral of loan %s: %w", loanID, domainCollateral.ErrNotFound)
			}
			return err
		}

		complete = recordComplete(rec)
		g.crossCheck(ctx, r, l, []*domainCollateral.Record{rec})
		return nil
	})
	return complete, err
}

// IsGroupComplete is the group verdict: every enrolled member must hold an
// individually complete record, and the record count must match the
// enrollment count exactly — a missing record fails the group even if all
// present records are complete.
func (g *Ledger) IsGroupComplete(ctx context.Context, groupLoanID string) (bool, GroupSummary, error) {
	var (
		complete bool
		sum      GroupSummary
	)
	sum.TotalRequired = decimal.Zero
	sum.TotalDeposited = decimal.Zero
	sum.TotalRemaining = decimal.Zero

	err := g.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, groupLoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("group loan %s: %w", groupLoanID, domainLoan.ErrNotFound)
			}
			return err
		}
		enrollments, err := r.Enrollments.ListByGroupLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(enrollments) == 0 {
			return fmt.Errorf("group loan %s has no enrollments: %w", groupLoanID, domainCollateral.ErrPrerequisiteNotMet)
		}
		records, err := r.Collaterals.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}

		byMember := make(map[string]*domainCollateral.Record, len(records))
		for _, rec := range records {
			byMember[rec.MemberID] = rec
			sum.TotalRequired = sum.TotalRequired.Add(rec.Required)
			sum.TotalDeposited = sum.TotalDeposited.Add(rec.Deposited)
			sum.TotalRemaining = sum.TotalRemaining.Add(rec.Remaining)
		}

		sum.TotalMembers = len(enrollments)
		complete = len(records) == len(enrollments)
		for _, e := range enrollments {
			rec, ok := byMember[e.MemberID]
			if !ok {
				complete = false
				g.log.Warnf("group loan %s: member %s has no collateral record", groupLoanID, e.MemberID)
				continue
			}
			if recordComplete(rec) {
				sum.CompleteCount++
			} else {
				complete = false
			}
		}

		g.crossCheck(ctx, r, l, records)
		return nil
	})
	if err != nil {
		return false, GroupSummary{}, err
	}
	return complete, sum, nil
}

func recordComplete(rec *domainCollateral.Record) bool {
	return rec.Status == domainCollateral.StatusComplete &&
		rec.Deposited.GreaterThanOrEqual(rec.Required)
}

// crossCheck compares the blocked-savings sums against the collateral table
// and logs drift. It never alters a verdict: the two sources are known to
// disagree when deposits bypass the blocking mechanism, and the collateral
// table wins.
func (g *Ledger) crossCheck(ctx context.Context, r uow.Repos, l *domainLoan.Loan, records []*domainCollateral.Record) {
	sums, err := r.Blocked.SumByLoan(ctx, l.ID)
	if err != nil {
		g.log.Warnf("loan %s: blocked-savings cross-check unavailable: %v", l.LoanID, err)
		return
	}
	for _, rec := range records {
		blocked, ok := sums[rec.MemberID]
		if !ok {
			blocked = decimal.Zero
		}
		if !blocked.Equal(rec.Deposited) {
			metrics.ReconcileMismatch()
			g.log.Warnf("loan %s collateral %s: blocked-savings ledger says %s, collateral table says %s (table is authoritative)",
				l.LoanID, rec.CollateralID, blocked, rec.Deposited)
		}
	}
}

func remainingOf(required, deposited decimal.Decimal) decimal.Decimal {
	rem := required.Sub(deposited)
	if rem.Sign() < 0 {
		return decimal.Zero
	}
	return rem
}
