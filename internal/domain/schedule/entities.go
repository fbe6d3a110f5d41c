package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusPaid          Status = "paid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusLate          Status = "late"
)

// Obligation is one repayment installment of a loan. For group loans each
// enrolled member gets their own contiguous Seq 1..N; MemberID is empty for
// individual loans.
type Obligation struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID   uint64 `gorm:"column:loan_id;not null;index;uniqueIndex:ux_obligations_loan_member_seq" json:"-"`
	MemberID string `gorm:"size:32;uniqueIndex:ux_obligations_loan_member_seq" json:"member_id,omitempty"`
	Seq      int    `gorm:"column:seq;not null;uniqueIndex:ux_obligations_loan_member_seq" json:"seq"`

	DueDate   time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Principal decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	Interest  decimal.Decimal `gorm:"type:decimal(18,2)" json:"interest"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2)" json:"total"`

	PaidAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"paid_amount"`
	Status     Status          `gorm:"type:enum('pending','paid','partially_paid','late');default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Obligation) TableName() string { return "repayment_obligations" }
