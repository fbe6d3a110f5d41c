package uow

import (
	"context"

	"microcredit-backend/internal/domain/collateral"
	"microcredit-backend/internal/domain/group"
	"microcredit-backend/internal/domain/loan"
	"microcredit-backend/internal/domain/schedule"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans       loan.Repository
	Obligations schedule.Repository
	Collaterals collateral.Repository
	Blocked     collateral.BlockedLedger
	Enrollments group.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
