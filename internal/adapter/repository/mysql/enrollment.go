package mysql

import (
	"context"

	"gorm.io/gorm"

	groupDomain "microcredit-backend/internal/domain/group"
)

type EnrollmentRepository struct{ db *gorm.DB }

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *groupDomain.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EnrollmentRepository) ListByGroupLoanID(ctx context.Context, groupLoanID uint64) ([]*groupDomain.Enrollment, error) {
	var out []*groupDomain.Enrollment
	res := r.db.WithContext(ctx).
		Where("group_loan_id = ?", groupLoanID).
		Order("member_id").
		Find(&out)
	return out, res.Error
}

func (r *EnrollmentRepository) CountByGroupLoanID(ctx context.Context, groupLoanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&groupDomain.Enrollment{}).
		Where("group_loan_id = ?", groupLoanID).
		Count(&n)
	return n, res.Error
}
