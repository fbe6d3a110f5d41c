package schedule

import "context"

type Repository interface {
	// CreateBatch inserts all obligations in one statement; all-or-nothing
	// within the enclosing transaction.
	CreateBatch(ctx context.Context, obs []*Obligation) error

	// ExistsForLoan is the activation idempotence guard.
	ExistsForLoan(ctx context.Context, loanID uint64) (bool, error)

	ListByLoanID(ctx context.Context, loanID uint64) ([]*Obligation, error)

	// CountUnpaid counts obligations of the loan whose status is not paid.
	CountUnpaid(ctx context.Context, loanID uint64) (int64, error)
	// CountUnpaidForMember scopes the count to one group member.
	CountUnpaidForMember(ctx context.Context, loanID uint64, memberID string) (int64, error)
}
