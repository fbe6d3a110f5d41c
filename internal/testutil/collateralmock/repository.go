package collateralmock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	domain "microcredit-backend/internal/domain/collateral"
)

var (
	_ domain.Repository    = (*Repo)(nil)
	_ domain.BlockedLedger = (*Ledger)(nil)
)

var errUnimplemented = errors.New("collateralmock: method not implemented")

// Repo is a function-backed mock that satisfies collateral.Repository.
type Repo struct {
	CreateFn                     func(ctx context.Context, rec *domain.Record) error
	GetByCollateralIDFn          func(ctx context.Context, collateralID string) (*domain.Record, error)
	GetByCollateralIDForUpdateFn func(ctx context.Context, collateralID string) (*domain.Record, error)
	GetByLoanIDFn                func(ctx context.Context, loanID uint64) (*domain.Record, error)
	ListByLoanIDFn               func(ctx context.Context, loanID uint64) ([]*domain.Record, error)
	SaveFn                       func(ctx context.Context, rec *domain.Record) error
}

func (m *Repo) Create(ctx context.Context, rec *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, rec)
	}
	return nil
}

func (m *Repo) GetByCollateralID(ctx context.Context, collateralID string) (*domain.Record, error) {
	if m.GetByCollateralIDFn != nil {
		return m.GetByCollateralIDFn(ctx, collateralID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByCollateralIDForUpdate(ctx context.Context, collateralID string) (*domain.Record, error) {
	if m.GetByCollateralIDForUpdateFn != nil {
		return m.GetByCollateralIDForUpdateFn(ctx, collateralID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID uint64) (*domain.Record, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]*domain.Record, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, rec *domain.Record) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, rec)
	}
	return nil
}

// Ledger is a function-backed mock of the blocked-savings view. The zero
// value reports sums that match nothing (empty map), which reads as "no
// blocked transactions".
type Ledger struct {
	SumByLoanFn func(ctx context.Context, loanID uint64) (map[string]decimal.Decimal, error)
}

func (m *Ledger) SumByLoan(ctx context.Context, loanID uint64) (map[string]decimal.Decimal, error) {
	if m.SumByLoanFn != nil {
		return m.SumByLoanFn(ctx, loanID)
	}
	return map[string]decimal.Decimal{}, nil
}
