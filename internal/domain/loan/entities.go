package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPendingGarantie Status = "pending_garantie"
	StatusPendingApproval Status = "pending_approval"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

// Terminal reports whether no transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type BorrowerKind string

const (
	BorrowerMember BorrowerKind = "member"
	BorrowerGroup  BorrowerKind = "group"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrAlreadyTerminal   = errors.New("loan is in a terminal state")
)

type Loan struct {
	ID           uint64       `gorm:"primaryKey;column:id" json:"-"`
	LoanID       string       `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerKind BorrowerKind `gorm:"type:enum('member','group');default:'member'" json:"borrower_kind"`
	// Member id for individual loans, group id for group loans.
	BorrowerID   string          `gorm:"size:32;index:idx_loans_borrower_active" json:"borrower_id"`
	Principal    decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	Frequency    Frequency       `gorm:"type:enum('daily','weekly','monthly')" json:"frequency"`
	Installments int             `gorm:"column:installments" json:"installments"`
	InterestRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"interest_rate"`
	DisbursedOn  time.Time       `gorm:"type:date" json:"disbursed_on"`
	// Decremented by the repayment collaborator, never by this core.
	RemainingPrincipal decimal.Decimal `gorm:"type:decimal(18,2)" json:"remaining_principal"`
	Status             Status          `gorm:"type:enum('pending_garantie','pending_approval','active','completed','cancelled');default:'pending_garantie'" json:"status"`
	RejectReason       string          `gorm:"type:text" json:"reject_reason,omitempty"`
	StatusUpdatedAt    time.Time       `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
	DeletedBy          string          `gorm:"size:32" json:"-"`
}

func (Loan) TableName() string { return "loans" }
