// Package lifecycle owns the loan status field and the transitions between
// pending_garantie, pending_approval, active, and cancelled. Activation
// materializes the repayment schedule exactly once per loan.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainLoan "microcredit-backend/internal/domain/loan"
	domainSchedule "microcredit-backend/internal/domain/schedule"
	"microcredit-backend/internal/domain/uow"
	"microcredit-backend/internal/metrics"
	collateralUC "microcredit-backend/internal/usecase/collateral"
	scheduleUC "microcredit-backend/internal/usecase/schedule"
)

// CollateralGate is the ledger's verdict surface; the state machine never
// judges collateral itself.
type CollateralGate interface {
	IsComplete(ctx context.Context, loanID string) (bool, error)
	IsGroupComplete(ctx context.Context, groupLoanID string) (bool, collateralUC.GroupSummary, error)
}

type StateMachine struct {
	uow  uow.UnitOfWork
	gate CollateralGate
	log  *logrus.Logger
}

func NewStateMachine(tx uow.UnitOfWork, gate CollateralGate, log *logrus.Logger) *StateMachine {
	return &StateMachine{uow: tx, gate: gate, log: log}
}

// Submit moves a loan from pending_garantie to pending_approval once its
// collateral is complete (or the operator overrides). No-op when already
// submitted.
func (s *StateMachine) Submit(ctx context.Context, in SubmitInput) (*LoanDTO, error) {
	complete, err := s.verdict(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}

	var dto *LoanDTO
	err = s.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		switch {
		case l.Status == domainLoan.StatusPendingApproval:
			dto = toDTO(l)
			return nil
		case l.Status.Terminal():
			return fmt.Errorf("loan %s is %s: %w", l.LoanID, l.Status, domainLoan.ErrAlreadyTerminal)
		case l.Status != domainLoan.StatusPendingGarantie:
			return fmt.Errorf("loan %s is %s: %w", l.LoanID, l.Status, domainLoan.ErrInvalidTransition)
		}

		if err := s.gateOrOverride(ctx, r, l, complete, in.Override, in.OperatorID); err != nil {
			return err
		}

		l.Status = domainLoan.StatusPendingApproval
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, s.mapLoanErr(err, in.LoanID)
	}
	return dto, nil
}

// Approve activates an individual loan. Obligations are generated and
// inserted in the same transaction that flips the status; re-invocation
// after a partial failure skips generation when obligations already exist,
// so a second call is a safe no-op rather than a duplicate-schedule bug.
func (s *StateMachine) Approve(ctx context.Context, in ApproveInput) (*LoanDTO, error) {
	complete, err := s.verdict(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}

	var (
		dto       *LoanDTO
		activated bool
	)
	err = s.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.BorrowerKind == domainLoan.BorrowerGroup {
			return fmt.Errorf("loan %s is a group loan: %w", l.LoanID, domainLoan.ErrInvalidTransition)
		}
		proceed, err := activationGuard(l)
		if err != nil {
			return err
		}
		if !proceed {
			dto = toDTO(l) // already active
			return nil
		}

		if err := s.gateOrOverride(ctx, r, l, complete, in.Override, in.OperatorID); err != nil {
			return err
		}

		exists, err := r.Obligations.ExistsForLoan(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("loan %s: obligation guard: %w", l.LoanID, err)
		}
		if exists {
			s.log.Warnf("loan %s: obligations already exist, completing a prior activation", l.LoanID)
		} else {
			plan := scheduleUC.Generate(scheduleUC.Terms{
				Principal:    l.Principal,
				Frequency:    l.Frequency,
				Installments: l.Installments,
				DisbursedOn:  l.DisbursedOn,
				InterestRate: l.InterestRate,
			})
			obs := obligationsFromPlan(l.ID, "", plan)
			if err := r.Obligations.CreateBatch(ctx, obs); err != nil {
				return fmt.Errorf("loan %s: persist obligations: %w", l.LoanID, err)
			}
		}

		l.Status = domainLoan.StatusActive
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		activated = true
		return nil
	})
	if err != nil {
		return nil, s.mapLoanErr(err, in.LoanID)
	}

	if activated {
		metrics.LoanActivated(string(domainLoan.BorrowerMember))
		s.log.Infof("loan %s activated by %s", in.LoanID, in.OperatorID)
	}
	return dto, nil
}

// ApproveGroup activates a group loan: one schedule per enrolled member,
// sized by the member's principal share from the enrollment records. The
// idempotence guard covers the whole batch.
func (s *StateMachine) ApproveGroup(ctx context.Context, in ApproveInput) (*LoanDTO, error) {
	complete, _, err := s.gate.IsGroupComplete(ctx, in.LoanID)
	if err != nil && !errors.Is(err, domainCollateral.ErrPrerequisiteNotMet) {
		return nil, err
	}

	var (
		dto       *LoanDTO
		activated bool
	)
	err = s.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.BorrowerKind != domainLoan.BorrowerGroup {
			return fmt.Errorf("loan %s is not a group loan: %w", l.LoanID, domainLoan.ErrInvalidTransition)
		}
		proceed, err := activationGuard(l)
		if err != nil {
			return err
		}
		if !proceed {
			dto = toDTO(l)
			return nil
		}

		if err := s.gateOrOverride(ctx, r, l, complete, in.Override, in.OperatorID); err != nil {
			return err
		}

		exists, err := r.Obligations.ExistsForLoan(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("group loan %s: obligation guard: %w", l.LoanID, err)
		}
		if exists {
			s.log.Warnf("group loan %s: obligations already exist, completing a prior activation", l.LoanID)
		} else {
			enrollments, err := r.Enrollments.ListByGroupLoanID(ctx, l.ID)
			if err != nil {
				return err
			}
			if len(enrollments) == 0 {
				return fmt.Errorf("group loan %s has no enrollments: %w", l.LoanID, domainCollateral.ErrPrerequisiteNotMet)
			}

			var obs []*domainSchedule.Obligation
			for _, e := range enrollments {
				plan := scheduleUC.Generate(scheduleUC.Terms{
					Principal:    e.Principal,
					Frequency:    l.Frequency,
					Installments: l.Installments,
					DisbursedOn:  l.DisbursedOn,
					InterestRate: l.InterestRate,
				})
				if len(plan.Entries) == 0 {
					return fmt.Errorf("group loan %s member %s: degenerate share %s: %w",
						l.LoanID, e.MemberID, e.Principal, domainLoan.ErrInvalidTransition)
				}
				obs = append(obs, obligationsFromPlan(l.ID, e.MemberID, plan)...)
			}
			if err := r.Obligations.CreateBatch(ctx, obs); err != nil {
				return fmt.Errorf("group loan %s: persist obligations: %w", l.LoanID, err)
			}
		}

		l.Status = domainLoan.StatusActive
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		activated = true
		return nil
	})
	if err != nil {
		return nil, s.mapLoanErr(err, in.LoanID)
	}

	if activated {
		metrics.LoanActivated(string(domainLoan.BorrowerGroup))
		s.log.Infof("group loan %s activated by %s", in.LoanID, in.OperatorID)
	}
	return dto, nil
}

// Reject cancels a loan in either pending state. It never generates a
// schedule and is a no-op on an already cancelled loan.
func (s *StateMachine) Reject(ctx context.Context, in RejectInput) (*LoanDTO, error) {
	var (
		dto       *LoanDTO
		cancelled bool
	)
	err := s.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		switch l.Status {
		case domainLoan.StatusCancelled:
			dto = toDTO(l)
			return nil
		case domainLoan.StatusCompleted:
			return fmt.Errorf("loan %s is completed: %w", l.LoanID, domainLoan.ErrAlreadyTerminal)
		case domainLoan.StatusActive:
			return fmt.Errorf("loan %s is active: %w", l.LoanID, domainLoan.ErrInvalidTransition)
		}

		l.Status = domainLoan.StatusCancelled
		l.RejectReason = in.Reason
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, s.mapLoanErr(err, in.LoanID)
	}

	if cancelled {
		metrics.LoanRejected()
		s.log.Infof("loan %s rejected by %s: %s", in.LoanID, in.OperatorID, in.Reason)
	}
	return dto, nil
}

// verdict asks the ledger for the pre-activation collateral check. A loan
// without a collateral record gates like an incomplete one.
func (s *StateMachine) verdict(ctx context.Context, loanID string) (bool, error) {
	complete, err := s.gate.IsComplete(ctx, loanID)
	if err != nil {
		if errors.Is(err, domainCollateral.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return complete, nil
}

// activationGuard inspects the locked loan row. Returns proceed=false for
// the idempotent already-active path.
func activationGuard(l *domainLoan.Loan) (bool, error) {
	switch l.Status {
	case domainLoan.StatusActive:
		return false, nil
	case domainLoan.StatusCompleted, domainLoan.StatusCancelled:
		return false, fmt.Errorf("loan %s is %s: %w", l.LoanID, l.Status, domainLoan.ErrAlreadyTerminal)
	case domainLoan.StatusPendingGarantie, domainLoan.StatusPendingApproval:
		return true, nil
	}
	return false, fmt.Errorf("loan %s has unknown status %q: %w", l.LoanID, l.Status, domainLoan.ErrInvalidTransition)
}

// gateOrOverride enforces the collateral gate, logging the shortfall with
// before/after amounts when the operator overrides.
func (s *StateMachine) gateOrOverride(ctx context.Context, r uow.Repos, l *domainLoan.Loan, complete, override bool, operatorID string) error {
	if complete {
		return nil
	}
	if !override {
		return fmt.Errorf("loan %s collateral incomplete: %w", l.LoanID, domainCollateral.ErrPrerequisiteNotMet)
	}

	required, deposited := decimalPair(ctx, r, l)
	metrics.CollateralOverride()
	s.log.Warnf("loan %s: operator %s overrode incomplete collateral (required=%s deposited=%s)",
		l.LoanID, operatorID, required, deposited)
	return nil
}

func decimalPair(ctx context.Context, r uow.Repos, l *domainLoan.Loan) (required, deposited string) {
	records, err := r.Collaterals.ListByLoanID(ctx, l.ID)
	if err != nil || len(records) == 0 {
		return "0", "0"
	}
	req := records[0].Required
	dep := records[0].Deposited
	for _, rec := range records[1:] {
		req = req.Add(rec.Required)
		dep = dep.Add(rec.Deposited)
	}
	return req.String(), dep.String()
}

func (s *StateMachine) mapLoanErr(err error, loanID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("loan %s: %w", loanID, domainLoan.ErrNotFound)
	}
	return err
}

func obligationsFromPlan(loanID uint64, memberID string, plan scheduleUC.Plan) []*domainSchedule.Obligation {
	obs := make([]*domainSchedule.Obligation, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		obs = append(obs, &domainSchedule.Obligation{
			LoanID:    loanID,
			MemberID:  memberID,
			Seq:       e.Seq,
			DueDate:   e.DueDate,
			Principal: e.Principal,
			Interest:  e.Interest,
			Total:     e.Total,
			Status:    domainSchedule.StatusPending,
		})
	}
	return obs
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		BorrowerKind:    string(l.BorrowerKind),
		BorrowerID:      l.BorrowerID,
		Principal:       l.Principal,
		Frequency:       string(l.Frequency),
		Installments:    l.Installments,
		InterestRate:    l.InterestRate,
		Status:          string(l.Status),
		RejectReason:    l.RejectReason,
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
	}
}
