package collateral

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByCollateralID(ctx context.Context, collateralID string) (*Record, error)
	// GetByCollateralIDForUpdate locks the row so deposit/withdrawal
	// read-modify-write cycles on the same record serialize.
	GetByCollateralIDForUpdate(ctx context.Context, collateralID string) (*Record, error)
	GetByLoanID(ctx context.Context, loanID uint64) (*Record, error)
	ListByLoanID(ctx context.Context, loanID uint64) ([]*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// BlockedLedger is the read-only view of the blocked-savings transactions.
type BlockedLedger interface {
	// SumByLoan returns the blocked total per member id (empty key for
	// individual loans).
	SumByLoan(ctx context.Context, loanID uint64) (map[string]decimal.Decimal, error)
}
