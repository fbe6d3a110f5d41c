// Package origination creates loans in pending_garantie together with their
// collateral records (deposited zero, required = principal x rate / 100).
package origination

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainGroup "microcredit-backend/internal/domain/group"
	domainLoan "microcredit-backend/internal/domain/loan"
	"microcredit-backend/internal/domain/uow"
	"microcredit-backend/internal/usecase/rates"
	"microcredit-backend/pkg/id"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

var ErrInvalidInput = errors.New("invalid loan input")

type Usecase struct {
	uow   uow.UnitOfWork
	rates *rates.Cache
	log   *logrus.Logger
}

func NewUsecase(tx uow.UnitOfWork, rc *rates.Cache, log *logrus.Logger) *Usecase {
	return &Usecase{uow: tx, rates: rc, log: log}
}

func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if !reHex32.MatchString(in.BorrowerID) {
		return nil, fmt.Errorf("borrower_id: %w", ErrInvalidInput)
	}
	if in.Principal.Sign() <= 0 || in.Installments <= 0 {
		return nil, fmt.Errorf("principal and installments must be positive: %w", ErrInvalidInput)
	}
	freq := domainLoan.Frequency(in.Frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("frequency %q: %w", in.Frequency, ErrInvalidInput)
	}

	rt, err := u.rates.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}

	var dto *LoanDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// one non-terminal loan per borrower
		pending, err := r.Loans.GetPendingLoanByBorrowerID(ctx, in.BorrowerID)
		switch {
		case err == nil:
			return fmt.Errorf("borrower %s already has a pending loan %s: %w",
				in.BorrowerID, pending.LoanID, ErrInvalidInput)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		l := &domainLoan.Loan{
			LoanID:             id.NewID32(),
			BorrowerKind:       domainLoan.BorrowerMember,
			BorrowerID:         in.BorrowerID,
			Principal:          in.Principal,
			Frequency:          freq,
			Installments:       in.Installments,
			InterestRate:       rt.Interest,
			DisbursedOn:        in.DisbursedOn,
			RemainingPrincipal: in.Principal,
			Status:             domainLoan.StatusPendingGarantie,
			StatusUpdatedAt:    time.Now().UTC(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		rec := newRecord(l.ID, "", in.Principal, rt.CollateralPercent)
		if err := r.Collaterals.Create(ctx, rec); err != nil {
			return err
		}

		dto = toDTO(l, []*domainCollateral.Record{rec})
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("loan %s originated for borrower %s (principal=%s, collateral required=%s)",
		dto.LoanID, in.BorrowerID, in.Principal, dto.Collaterals[0].Required)
	return dto, nil
}

func (u *Usecase) CreateGroupLoan(ctx context.Context, in CreateGroupLoanInput) (*LoanDTO, error) {
	if !reHex32.MatchString(in.GroupID) {
		return nil, fmt.Errorf("group_id: %w", ErrInvalidInput)
	}
	if len(in.Members) == 0 {
		return nil, fmt.Errorf("group loan needs at least one member: %w", ErrInvalidInput)
	}
	if in.Installments <= 0 {
		return nil, fmt.Errorf("installments must be positive: %w", ErrInvalidInput)
	}
	freq := domainLoan.Frequency(in.Frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("frequency %q: %w", in.Frequency, ErrInvalidInput)
	}

	total := decimal.Zero
	seen := make(map[string]struct{}, len(in.Members))
	for _, m := range in.Members {
		if !reHex32.MatchString(m.MemberID) {
			return nil, fmt.Errorf("member_id %q: %w", m.MemberID, ErrInvalidInput)
		}
		if _, dup := seen[m.MemberID]; dup {
			return nil, fmt.Errorf("member %s listed twice: %w", m.MemberID, ErrInvalidInput)
		}
		seen[m.MemberID] = struct{}{}
		if m.Principal.Sign() <= 0 {
			return nil, fmt.Errorf("member %s principal must be positive: %w", m.MemberID, ErrInvalidInput)
		}
		total = total.Add(m.Principal)
	}

	rt, err := u.rates.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}

	var dto *LoanDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		pending, err := r.Loans.GetPendingLoanByBorrowerID(ctx, in.GroupID)
		switch {
		case err == nil:
			return fmt.Errorf("group %s already has a pending loan %s: %w",
				in.GroupID, pending.LoanID, ErrInvalidInput)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		l := &domainLoan.Loan{
			LoanID:             id.NewID32(),
			BorrowerKind:       domainLoan.BorrowerGroup,
			BorrowerID:         in.GroupID,
			Principal:          total,
			Frequency:          freq,
			Installments:       in.Installments,
			InterestRate:       rt.Interest,
			DisbursedOn:        in.DisbursedOn,
			RemainingPrincipal: total,
			Status:             domainLoan.StatusPendingGarantie,
			StatusUpdatedAt:    time.Now().UTC(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		records := make([]*domainCollateral.Record, 0, len(in.Members))
		for _, m := range in.Members {
			if err := r.Enrollments.Create(ctx, &domainGroup.Enrollment{
				GroupLoanID: l.ID,
				MemberID:    m.MemberID,
				Principal:   m.Principal,
			}); err != nil {
				return err
			}
			rec := newRecord(l.ID, m.MemberID, m.Principal, rt.CollateralPercent)
			if err := r.Collaterals.Create(ctx, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}

		dto = toDTO(l, records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("group loan %s originated for group %s with %d members (principal=%s)",
		dto.LoanID, in.GroupID, len(in.Members), total)
	return dto, nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loan %s: %w", loanID, domainLoan.ErrNotFound)
			}
			return err
		}
		records, err := r.Collaterals.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		dto = toDTO(l, records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GetSchedule lists a loan's repayment obligations with derived totals.
// Empty until the loan is activated.
func (u *Usecase) GetSchedule(ctx context.Context, loanID string) (*ScheduleDTO, error) {
	var dto *ScheduleDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loan %s: %w", loanID, domainLoan.ErrNotFound)
			}
			return err
		}
		obs, err := r.Obligations.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		unpaid, err := r.Obligations.CountUnpaid(ctx, l.ID)
		if err != nil {
			return err
		}

		dto = &ScheduleDTO{
			LoanID:      l.LoanID,
			Status:      string(l.Status),
			Entries:     make([]ObligationDTO, 0, len(obs)),
			UnpaidCount: unpaid,
		}
		for _, o := range obs {
			dto.Entries = append(dto.Entries, ObligationDTO{
				MemberID:   o.MemberID,
				Seq:        o.Seq,
				DueDate:    o.DueDate,
				Principal:  o.Principal,
				Interest:   o.Interest,
				Total:      o.Total,
				PaidAmount: o.PaidAmount,
				Status:     string(o.Status),
			})
			dto.TotalAmount = dto.TotalAmount.Add(o.Total)
			dto.TotalInterest = dto.TotalInterest.Add(o.Interest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// required = principal x pct / 100, half-up to 2dp
func newRecord(loanID uint64, memberID string, principal, pct decimal.Decimal) *domainCollateral.Record {
	required := principal.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	return &domainCollateral.Record{
		CollateralID: id.NewID32(),
		LoanID:       loanID,
		MemberID:     memberID,
		Required:     required,
		Deposited:    decimal.Zero,
		Remaining:    required,
		Status:       domainCollateral.StatusPartial,
	}
}

func toDTO(l *domainLoan.Loan, records []*domainCollateral.Record) *LoanDTO {
	dto := &LoanDTO{
		LoanID:       l.LoanID,
		BorrowerKind: string(l.BorrowerKind),
		BorrowerID:   l.BorrowerID,
		Principal:    l.Principal,
		Frequency:    string(l.Frequency),
		Installments: l.Installments,
		InterestRate: l.InterestRate,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
	}
	for _, rec := range records {
		dto.Collaterals = append(dto.Collaterals, CollateralDTO{
			CollateralID: rec.CollateralID,
			MemberID:     rec.MemberID,
			Required:     rec.Required,
			Deposited:    rec.Deposited,
			Remaining:    rec.Remaining,
			Status:       string(rec.Status),
		})
	}
	return dto
}
