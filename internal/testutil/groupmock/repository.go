package groupmock

import (
	"context"
	"errors"

	domain "microcredit-backend/internal/domain/group"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("groupmock: method not implemented")

// Repo is a function-backed mock that satisfies group.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, e *domain.Enrollment) error
	ListByGroupLoanIDFn  func(ctx context.Context, groupLoanID uint64) ([]*domain.Enrollment, error)
	CountByGroupLoanIDFn func(ctx context.Context, groupLoanID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Enrollment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByGroupLoanID(ctx context.Context, groupLoanID uint64) ([]*domain.Enrollment, error) {
	if m.ListByGroupLoanIDFn != nil {
		return m.ListByGroupLoanIDFn(ctx, groupLoanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountByGroupLoanID(ctx context.Context, groupLoanID uint64) (int64, error) {
	if m.CountByGroupLoanIDFn != nil {
		return m.CountByGroupLoanIDFn(ctx, groupLoanID)
	}
	return 0, errUnimplemented
}
