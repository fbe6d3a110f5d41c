package obligationmock

import (
	"context"
	"errors"

	domain "microcredit-backend/internal/domain/schedule"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("obligationmock: method not implemented")

// Repo is a function-backed mock that satisfies schedule.Repository.
type Repo struct {
	CreateBatchFn          func(ctx context.Context, obs []*domain.Obligation) error
	ExistsForLoanFn        func(ctx context.Context, loanID uint64) (bool, error)
	ListByLoanIDFn         func(ctx context.Context, loanID uint64) ([]*domain.Obligation, error)
	CountUnpaidFn          func(ctx context.Context, loanID uint64) (int64, error)
	CountUnpaidForMemberFn func(ctx context.Context, loanID uint64, memberID string) (int64, error)
}

func (m *Repo) CreateBatch(ctx context.Context, obs []*domain.Obligation) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, obs)
	}
	return nil
}

func (m *Repo) ExistsForLoan(ctx context.Context, loanID uint64) (bool, error) {
	if m.ExistsForLoanFn != nil {
		return m.ExistsForLoanFn(ctx, loanID)
	}
	return false, nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]*domain.Obligation, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountUnpaid(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountUnpaidFn != nil {
		return m.CountUnpaidFn(ctx, loanID)
	}
	return 0, errUnimplemented
}

func (m *Repo) CountUnpaidForMember(ctx context.Context, loanID uint64, memberID string) (int64, error) {
	if m.CountUnpaidForMemberFn != nil {
		return m.CountUnpaidForMemberFn(ctx, loanID, memberID)
	}
	return 0, errUnimplemented
}
