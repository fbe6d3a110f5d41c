package group

import "context"

type Repository interface {
	Create(ctx context.Context, e *Enrollment) error
	ListByGroupLoanID(ctx context.Context, groupLoanID uint64) ([]*Enrollment, error)
	CountByGroupLoanID(ctx context.Context, groupLoanID uint64) (int64, error)
}
