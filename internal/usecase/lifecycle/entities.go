package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApproveInput struct {
	LoanID     string
	OperatorID string // 32-char hex
	// Override activates the loan even when the collateral verdict is
	// incomplete; the shortfall is logged for audit.
	Override bool
}

type RejectInput struct {
	LoanID     string
	OperatorID string
	Reason     string
}

type SubmitInput struct {
	LoanID     string
	OperatorID string
	Override   bool
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	BorrowerKind    string          `json:"borrower_kind"`
	BorrowerID      string          `json:"borrower_id"`
	Principal       decimal.Decimal `json:"principal"`
	Frequency       string          `json:"frequency"`
	Installments    int             `json:"installments"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	Status          string          `json:"status"`
	RejectReason    string          `json:"reject_reason,omitempty"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}
