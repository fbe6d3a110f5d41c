package mysql

import (
	"context"

	"gorm.io/gorm"

	scheduleDomain "microcredit-backend/internal/domain/schedule"
)

type ObligationRepository struct{ db *gorm.DB }

func NewObligationRepository(db *gorm.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

func (r *ObligationRepository) CreateBatch(ctx context.Context, obs []*scheduleDomain.Obligation) error {
	if len(obs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&obs).Error
}

func (r *ObligationRepository) ExistsForLoan(ctx context.Context, loanID uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&scheduleDomain.Obligation{}).
		Where("loan_id = ?", loanID).
		Count(&n)
	return n > 0, res.Error
}

func (r *ObligationRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]*scheduleDomain.Obligation, error) {
	var out []*scheduleDomain.Obligation
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("member_id, seq").
		Find(&out)
	return out, res.Error
}

func (r *ObligationRepository) CountUnpaid(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&scheduleDomain.Obligation{}).
		Where("loan_id = ? AND status <> ?", loanID, scheduleDomain.StatusPaid).
		Count(&n)
	return n, res.Error
}

func (r *ObligationRepository) CountUnpaidForMember(ctx context.Context, loanID uint64, memberID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&scheduleDomain.Obligation{}).
		Where("loan_id = ? AND member_id = ? AND status <> ?", loanID, memberID, scheduleDomain.StatusPaid).
		Count(&n)
	return n, res.Error
}
