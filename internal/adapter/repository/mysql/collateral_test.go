package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "microcredit-backend/internal/domain/collateral"
	groupDomain "microcredit-backend/internal/domain/group"
	"microcredit-backend/pkg/id"
)

func makeRecord(loanID uint64, memberID string) *domain.Record {
	required := decimal.RequireFromString("500.00")
	return &domain.Record{
		CollateralID: id.NewID32(),
		LoanID:       loanID,
		MemberID:     memberID,
		Required:     required,
		Deposited:    decimal.Zero,
		Remaining:    required,
		Status:       domain.StatusPartial,
	}
}

func TestCollateralCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewCollateralRepository(db)
	ctx := context.Background()

	rec := makeRecord(1, "")
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByCollateralID(ctx, rec.CollateralID)
	if err != nil {
		t.Fatalf("GetByCollateralID: %v", err)
	}
	if got.LoanID != 1 || !got.Required.Equal(rec.Required) {
		t.Errorf("unexpected record: %+v", got)
	}

	byLoan, err := repo.GetByLoanID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if byLoan.CollateralID != rec.CollateralID {
		t.Errorf("GetByLoanID returned %s", byLoan.CollateralID)
	}

	if _, err := repo.GetByCollateralID(ctx, id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("missing record: err = %v", err)
	}
}

func TestCollateralSaveDepositRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewCollateralRepository(db)
	ctx := context.Background()

	rec := makeRecord(1, "")
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	rec.Deposited = decimal.RequireFromString("500.00")
	rec.Remaining = decimal.Zero
	rec.Status = domain.StatusComplete
	rec.LastDepositOn = &now
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByCollateralIDForUpdate(ctx, rec.CollateralID)
	if err != nil {
		t.Fatalf("GetByCollateralIDForUpdate: %v", err)
	}
	if got.Status != domain.StatusComplete || !got.Remaining.IsZero() {
		t.Errorf("deposit did not round-trip: %+v", got)
	}
	if got.LastDepositOn == nil || !got.LastDepositOn.Equal(now) {
		t.Errorf("last deposit on = %v", got.LastDepositOn)
	}
}

func TestCollateralListByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewCollateralRepository(db)
	ctx := context.Background()

	for _, member := range []string{"m2", "m1", "m3"} {
		if err := repo.Create(ctx, makeRecord(7, member)); err != nil {
			t.Fatalf("Create %s: %v", member, err)
		}
	}
	if err := repo.Create(ctx, makeRecord(8, "m1")); err != nil {
		t.Fatalf("Create other loan: %v", err)
	}

	got, err := repo.ListByLoanID(ctx, 7)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d records, want 3", len(got))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if got[i].MemberID != want {
			t.Errorf("position %d is %s, want %s", i, got[i].MemberID, want)
		}
	}
}

func TestBlockedLedgerSumByLoan(t *testing.T) {
	db := openTestDB(t)
	ledger := NewBlockedLedgerRepository(db)
	ctx := context.Background()

	posted := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	rows := []*domain.BlockedTransaction{
		{TxID: id.NewID32(), LoanID: 1, MemberID: "m1", Amount: decimal.RequireFromString("100.25"), PostedOn: posted},
		{TxID: id.NewID32(), LoanID: 1, MemberID: "m1", Amount: decimal.RequireFromString("50.50"), PostedOn: posted},
		{TxID: id.NewID32(), LoanID: 1, MemberID: "m2", Amount: decimal.RequireFromString("75.00"), PostedOn: posted},
		{TxID: id.NewID32(), LoanID: 2, MemberID: "m1", Amount: decimal.RequireFromString("999.00"), PostedOn: posted},
	}
	for _, tx := range rows {
		if err := db.Create(tx).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	sums, err := ledger.SumByLoan(ctx, 1)
	if err != nil {
		t.Fatalf("SumByLoan: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("sums = %v", sums)
	}
	if !sums["m1"].Equal(decimal.RequireFromString("150.75")) {
		t.Errorf("m1 sum = %s", sums["m1"])
	}
	if !sums["m2"].Equal(decimal.RequireFromString("75")) {
		t.Errorf("m2 sum = %s", sums["m2"])
	}

	empty, err := ledger.SumByLoan(ctx, 99)
	if err != nil {
		t.Fatalf("SumByLoan empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unexpected sums for unused loan: %v", empty)
	}
}

func TestEnrollmentCreateAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	for member, share := range map[string]string{"m1": "600", "m2": "400"} {
		err := repo.Create(ctx, &groupDomain.Enrollment{
			GroupLoanID: 5,
			MemberID:    member,
			Principal:   decimal.RequireFromString(share),
		})
		if err != nil {
			t.Fatalf("Create %s: %v", member, err)
		}
	}

	got, err := repo.ListByGroupLoanID(ctx, 5)
	if err != nil {
		t.Fatalf("ListByGroupLoanID: %v", err)
	}
	if len(got) != 2 || got[0].MemberID != "m1" || got[1].MemberID != "m2" {
		t.Fatalf("enrollments: %+v", got)
	}

	n, err := repo.CountByGroupLoanID(ctx, 5)
	if err != nil || n != 2 {
		t.Fatalf("count = %d err = %v", n, err)
	}

	// (group_loan_id, member_id) is unique
	err = repo.Create(ctx, &groupDomain.Enrollment{
		GroupLoanID: 5,
		MemberID:    "m1",
		Principal:   decimal.RequireFromString("1"),
	})
	if err == nil {
		t.Fatal("duplicate enrollment accepted")
	}
}
