package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "microcredit-backend/internal/domain/schedule"
)

func makeObligations(loanID uint64, memberID string, n int) []*domain.Obligation {
	due := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	obs := make([]*domain.Obligation, 0, n)
	for i := 1; i <= n; i++ {
		obs = append(obs, &domain.Obligation{
			LoanID:     loanID,
			MemberID:   memberID,
			Seq:        i,
			DueDate:    due.AddDate(0, 0, 7*(i-1)),
			Principal:  decimal.RequireFromString("100.00"),
			Interest:   decimal.RequireFromString("15.00"),
			Total:      decimal.RequireFromString("115.00"),
			PaidAmount: decimal.Zero,
			Status:     domain.StatusPending,
		})
	}
	return obs
}

func TestObligationCreateBatchAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewObligationRepository(db)
	ctx := context.Background()

	if err := repo.CreateBatch(ctx, makeObligations(1, "", 5)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := repo.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	got, err := repo.ListByLoanID(ctx, 1)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("listed %d obligations, want 5", len(got))
	}
	for i, o := range got {
		if o.Seq != i+1 {
			t.Errorf("position %d has seq %d", i, o.Seq)
		}
	}

	other, err := repo.ListByLoanID(ctx, 2)
	if err != nil {
		t.Fatalf("ListByLoanID other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("loan 2 sees loan 1's obligations")
	}
}

func TestObligationExistsForLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewObligationRepository(db)
	ctx := context.Background()

	exists, err := repo.ExistsForLoan(ctx, 1)
	if err != nil || exists {
		t.Fatalf("fresh loan: exists=%v err=%v", exists, err)
	}

	if err := repo.CreateBatch(ctx, makeObligations(1, "", 3)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	exists, err = repo.ExistsForLoan(ctx, 1)
	if err != nil || !exists {
		t.Fatalf("after insert: exists=%v err=%v", exists, err)
	}
}

func TestObligationUniqueSeqPerMember(t *testing.T) {
	db := openTestDB(t)
	repo := NewObligationRepository(db)
	ctx := context.Background()

	if err := repo.CreateBatch(ctx, makeObligations(1, "m1", 3)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	// same loan, same member, same seq range must be rejected
	if err := repo.CreateBatch(ctx, makeObligations(1, "m1", 3)); err == nil {
		t.Fatal("duplicate (loan, member, seq) batch accepted")
	}
	// same seq range for another member is fine
	if err := repo.CreateBatch(ctx, makeObligations(1, "m2", 3)); err != nil {
		t.Fatalf("second member batch: %v", err)
	}
}

func TestObligationCountUnpaid(t *testing.T) {
	db := openTestDB(t)
	repo := NewObligationRepository(db)
	ctx := context.Background()

	obs := makeObligations(1, "", 4)
	obs[0].Status = domain.StatusPaid
	obs[1].Status = domain.StatusPartiallyPaid
	obs[2].Status = domain.StatusLate
	if err := repo.CreateBatch(ctx, obs); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	n, err := repo.CountUnpaid(ctx, 1)
	if err != nil {
		t.Fatalf("CountUnpaid: %v", err)
	}
	if n != 3 {
		t.Errorf("unpaid = %d, want 3 (partial and late still count)", n)
	}
}

func TestObligationCountUnpaidForMember(t *testing.T) {
	db := openTestDB(t)
	repo := NewObligationRepository(db)
	ctx := context.Background()

	m1 := makeObligations(1, "m1", 2)
	m1[0].Status = domain.StatusPaid
	m1[1].Status = domain.StatusPaid
	m2 := makeObligations(1, "m2", 2)
	if err := repo.CreateBatch(ctx, append(m1, m2...)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	n, err := repo.CountUnpaidForMember(ctx, 1, "m1")
	if err != nil {
		t.Fatalf("CountUnpaidForMember: %v", err)
	}
	if n != 0 {
		t.Errorf("m1 unpaid = %d, want 0", n)
	}

	n, err = repo.CountUnpaidForMember(ctx, 1, "m2")
	if err != nil {
		t.Fatalf("CountUnpaidForMember: %v", err)
	}
	if n != 2 {
		t.Errorf("m2 unpaid = %d, want 2", n)
	}
}
