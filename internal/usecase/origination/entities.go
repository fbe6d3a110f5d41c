package origination

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	BorrowerID   string          `json:"borrower_id"`
	Principal    decimal.Decimal `json:"principal"`
	Frequency    string          `json:"frequency"`
	Installments int             `json:"installments"`
	DisbursedOn  time.Time       `json:"disbursed_on"`
}

type MemberShare struct {
	MemberID  string          `json:"member_id"`
	Principal decimal.Decimal `json:"principal"`
}

type CreateGroupLoanInput struct {
	GroupID      string        `json:"group_id"`
	Frequency    string        `json:"frequency"`
	Installments int           `json:"installments"`
	DisbursedOn  time.Time     `json:"disbursed_on"`
	Members      []MemberShare `json:"members"`
}

type CollateralDTO struct {
	CollateralID string          `json:"collateral_id"`
	MemberID     string          `json:"member_id,omitempty"`
	Required     decimal.Decimal `json:"required"`
	Deposited    decimal.Decimal `json:"deposited"`
	Remaining    decimal.Decimal `json:"remaining"`
	Status       string          `json:"status"`
}

type ObligationDTO struct {
	MemberID   string          `json:"member_id,omitempty"`
	Seq        int             `json:"seq"`
	DueDate    time.Time       `json:"due_date"`
	Principal  decimal.Decimal `json:"principal"`
	Interest   decimal.Decimal `json:"interest"`
	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     string          `json:"status"`
}

type ScheduleDTO struct {
	LoanID        string          `json:"loan_id"`
	Status        string          `json:"status"`
	Entries       []ObligationDTO `json:"entries"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	UnpaidCount   int64           `json:"unpaid_count"`
}

type LoanDTO struct {
	LoanID       string          `json:"loan_id"`
	BorrowerKind string          `json:"borrower_kind"`
	BorrowerID   string          `json:"borrower_id"`
	Principal    decimal.Decimal `json:"principal"`
	Frequency    string          `json:"frequency"`
	Installments int             `json:"installments"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Status       string          `json:"status"`
	Collaterals  []CollateralDTO `json:"collaterals"`
	CreatedAt    time.Time       `json:"created_at"`
}
