package mysql

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM, decimals as text) ---

type loanSQLite struct {
	ID                 uint64         `gorm:"primaryKey;column:id"`
	LoanID             string         `gorm:"size:32;column:loan_id"`
	BorrowerKind       string         `gorm:"type:text;column:borrower_kind"`
	BorrowerID         string         `gorm:"size:32;column:borrower_id"`
	Principal          string         `gorm:"type:text;column:principal"`
	Frequency          string         `gorm:"type:text;column:frequency"`
	Installments       int            `gorm:"column:installments"`
	InterestRate       string         `gorm:"type:text;column:interest_rate"`
	DisbursedOn        time.Time      `gorm:"column:disbursed_on"`
	RemainingPrincipal string         `gorm:"type:text;column:remaining_principal"`
	Status             string         `gorm:"type:text;column:status"` // no enum
	RejectReason       string         `gorm:"column:reject_reason"`
	StatusUpdatedAt    time.Time      `gorm:"column:status_updated_at"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at"`
	DeletedBy          string         `gorm:"column:deleted_by"`
}

func (loanSQLite) TableName() string { return "loans" }

type obligationSQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	LoanID     uint64    `gorm:"column:loan_id;index;uniqueIndex:ux_obligations_loan_member_seq"`
	MemberID   string    `gorm:"size:32;column:member_id;uniqueIndex:ux_obligations_loan_member_seq"`
	Seq        int       `gorm:"column:seq;uniqueIndex:ux_obligations_loan_member_seq"`
	DueDate    time.Time `gorm:"column:due_date"`
	Principal  string    `gorm:"type:text;column:principal"`
	Interest   string    `gorm:"type:text;column:interest"`
	Total      string    `gorm:"type:text;column:total"`
	PaidAmount string    `gorm:"type:text;column:paid_amount"`
	Status     string    `gorm:"type:text;column:status"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (obligationSQLite) TableName() string { return "repayment_obligations" }

type collateralSQLite struct {
	ID            uint64         `gorm:"primaryKey;column:id"`
	CollateralID  string         `gorm:"size:32;column:collateral_id"`
	LoanID        uint64         `gorm:"column:loan_id;uniqueIndex:ux_collaterals_loan_member"`
	MemberID      string         `gorm:"size:32;column:member_id;uniqueIndex:ux_collaterals_loan_member"`
	Required      string         `gorm:"type:text;column:required"`
	Deposited     string         `gorm:"type:text;column:deposited"`
	Remaining     string         `gorm:"type:text;column:remaining"`
	Status        string         `gorm:"type:text;column:status"`
	LastDepositOn *time.Time     `gorm:"column:last_deposit_on"`
	RefundedOn    *time.Time     `gorm:"column:refunded_on"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (collateralSQLite) TableName() string { return "collateral_records" }

type blockedTxSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	TxID      string    `gorm:"size:32;column:tx_id"`
	LoanID    uint64    `gorm:"column:loan_id;index"`
	MemberID  string    `gorm:"size:32;column:member_id"`
	Amount    string    `gorm:"type:text;column:amount"`
	PostedOn  time.Time `gorm:"column:posted_on"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (blockedTxSQLite) TableName() string { return "blocked_transactions" }

type enrollmentSQLite struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	GroupLoanID uint64    `gorm:"column:group_loan_id;uniqueIndex:ux_enrollments_loan_member"`
	MemberID    string    `gorm:"size:32;column:member_id;uniqueIndex:ux_enrollments_loan_member"`
	Principal   string    `gorm:"type:text;column:principal"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (enrollmentSQLite) TableName() string { return "group_enrollments" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the
// sqlite-safe schemas, never the domain models.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&loanSQLite{},
		&obligationSQLite{},
		&collateralSQLite{},
		&blockedTxSQLite{},
		&enrollmentSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
