package collateral

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPartial  Status = "partial"
	StatusComplete Status = "complete"
	// Refunded is terminal: the record stays as historical evidence and
	// accepts no further deposits.
	StatusRefunded Status = "refunded"
)

var (
	ErrNotFound           = errors.New("collateral record not found")
	ErrInvalidAmount      = errors.New("invalid collateral amount")
	ErrPrerequisiteNotMet = errors.New("collateral prerequisite not met")
	ErrAlreadyTerminal    = errors.New("collateral record is refunded")
)

// Record tracks one borrower's collateral against a required amount.
// Group loans carry one record per enrolled member (MemberID set);
// individual loans carry exactly one record with MemberID empty.
type Record struct {
	ID           uint64 `gorm:"primaryKey;column:id" json:"-"`
	CollateralID string `gorm:"size:32;uniqueIndex:ux_collaterals_collateral_id_active" json:"collateral_id"`
	LoanID       uint64 `gorm:"column:loan_id;not null;uniqueIndex:ux_collaterals_loan_member" json:"-"`
	MemberID     string `gorm:"size:32;uniqueIndex:ux_collaterals_loan_member" json:"member_id,omitempty"`

	Required  decimal.Decimal `gorm:"type:decimal(18,2)" json:"required"`
	Deposited decimal.Decimal `gorm:"type:decimal(18,2)" json:"deposited"`
	Remaining decimal.Decimal `gorm:"type:decimal(18,2)" json:"remaining"`
	Status    Status          `gorm:"type:enum('partial','complete','refunded');default:'partial'" json:"status"`

	LastDepositOn *time.Time `gorm:"type:date" json:"last_deposit_on,omitempty"`
	RefundedOn    *time.Time `gorm:"type:date" json:"refunded_on,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Record) TableName() string { return "collateral_records" }

// BlockedTransaction is one row of the blocked-savings ledger kept by the
// savings collaborator. It is advisory only: reconciliation compares its sums
// against Record.Deposited and logs drift, but never trusts it for verdicts.
type BlockedTransaction struct {
	ID       uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxID     string          `gorm:"size:32;uniqueIndex" json:"tx_id"`
	LoanID   uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	MemberID string          `gorm:"size:32" json:"member_id,omitempty"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	PostedOn time.Time       `gorm:"type:date" json:"posted_on"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BlockedTransaction) TableName() string { return "blocked_transactions" }
