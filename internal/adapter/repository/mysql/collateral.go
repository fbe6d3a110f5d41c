package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	collateralDomain "microcredit-backend/internal/domain/collateral"
)

type CollateralRepository struct{ db *gorm.DB }

func NewCollateralRepository(db *gorm.DB) *CollateralRepository {
	return &CollateralRepository{db: db}
}

func (r *CollateralRepository) Create(ctx context.Context, rec *collateralDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *CollateralRepository) Save(ctx context.Context, rec *collateralDomain.Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *CollateralRepository) GetByCollateralID(ctx context.Context, collateralID string) (*collateralDomain.Record, error) {
	var out collateralDomain.Record
	res := r.db.WithContext(ctx).Where("collateral_id = ?", collateralID).First(&out)
	return &out, res.Error
}

func (r *CollateralRepository) GetByCollateralIDForUpdate(ctx context.Context, collateralID string) (*collateralDomain.Record, error) {
	var out collateralDomain.Record
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("collateral_id = ?", collateralID).
		First(&out)
	return &out, res.Error
}

func (r *CollateralRepository) GetByLoanID(ctx context.Context, loanID uint64) (*collateralDomain.Record, error) {
	var out collateralDomain.Record
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *CollateralRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]*collateralDomain.Record, error) {
	var out []*collateralDomain.Record
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("member_id").
		Find(&out)
	return out, res.Error
}

// BlockedLedgerRepository reads the blocked-savings transactions written by
// the savings collaborator. Read-only here.
type BlockedLedgerRepository struct{ db *gorm.DB }

func NewBlockedLedgerRepository(db *gorm.DB) *BlockedLedgerRepository {
	return &BlockedLedgerRepository{db: db}
}

func (r *BlockedLedgerRepository) SumByLoan(ctx context.Context, loanID uint64) (map[string]decimal.Decimal, error) {
	type row struct {
		MemberID string
		Total    decimal.Decimal
	}
	var rows []row
	res := r.db.WithContext(ctx).
		Model(&collateralDomain.BlockedTransaction{}).
		Select("member_id, SUM(amount) AS total").
		Where("loan_id = ?", loanID).
		Group("member_id").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, rw := range rows {
		out[rw.MemberID] = rw.Total
	}
	return out, nil
}
