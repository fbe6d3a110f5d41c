package group

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment records one member's participation in a group loan together
// with that member's slice of the group principal. The split is decided by
// the group-management collaborator and is never recomputed here.
type Enrollment struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	GroupLoanID uint64          `gorm:"column:group_loan_id;not null;uniqueIndex:ux_enrollments_loan_member" json:"-"`
	MemberID    string          `gorm:"size:32;not null;uniqueIndex:ux_enrollments_loan_member" json:"member_id"`
	Principal   decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Enrollment) TableName() string { return "group_enrollments" }
