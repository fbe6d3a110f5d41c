// Package schedule turns loan terms into an amortization plan. It is pure:
// no clock, no storage, no configuration lookups — the interest rate is an
// input so callers fetch it once and the output stays reproducible.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"microcredit-backend/internal/domain/loan"
)

type Terms struct {
	Principal    decimal.Decimal
	Frequency    loan.Frequency
	Installments int
	DisbursedOn  time.Time
	InterestRate decimal.Decimal // decimal fraction, e.g. 0.15
}

type Entry struct {
	Seq       int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
}

type Plan struct {
	Entries       []Entry
	FirstDueDate  time.Time
	LastDueDate   time.Time
	TotalAmount   decimal.Decimal
	TotalInterest decimal.Decimal
}

// Generate builds the repayment plan for the given terms.
//
// The per-installment principal is principal/count rounded half-up to two
// decimals; the final installment carries the exact remainder so the shares
// always sum to the principal. Due dates step from the previous due date by
// the frequency offset and are then pushed off weekends, so the snap
// compounds across the plan.
//
// Degenerate terms (principal <= 0 or count <= 0) yield an empty plan with
// zero totals so callers can pre-validate cheaply.
func Generate(t Terms) Plan {
	plan := Plan{
		TotalAmount:   decimal.Zero,
		TotalInterest: decimal.Zero,
	}
	if t.Principal.Sign() <= 0 || t.Installments <= 0 {
		return plan
	}

	count := decimal.NewFromInt(int64(t.Installments))
	base := t.Principal.Div(count).Round(2)

	plan.Entries = make([]Entry, 0, t.Installments)
	due := t.DisbursedOn
	allocated := decimal.Zero

	for seq := 1; seq <= t.Installments; seq++ {
		share := base
		if seq == t.Installments {
			// exact remainder: no rounding drift on the total
			share = t.Principal.Sub(allocated)
		}
		allocated = allocated.Add(share)

		interest := share.Mul(t.InterestRate).Round(2)
		total := share.Add(interest).Round(2)

		due = NextDueDate(due, t.Frequency)
		plan.Entries = append(plan.Entries, Entry{
			Seq:       seq,
			DueDate:   due,
			Principal: share,
			Interest:  interest,
			Total:     total,
		})

		plan.TotalAmount = plan.TotalAmount.Add(total)
		plan.TotalInterest = plan.TotalInterest.Add(interest)
	}

	plan.FirstDueDate = plan.Entries[0].DueDate
	plan.LastDueDate = plan.Entries[len(plan.Entries)-1].DueDate
	return plan
}

// NextDueDate applies the frequency offset to the previous due date (the
// disbursement date for the first installment) and snaps the result forward
// to a business day.
func NextDueDate(prev time.Time, f loan.Frequency) time.Time {
	var next time.Time
	switch f {
	case loan.FrequencyWeekly:
		next = prev.AddDate(0, 0, 7)
	case loan.FrequencyMonthly:
		next = prev.AddDate(0, 1, 0)
	default:
		// daily collections run one day behind the nominal next day
		next = prev.AddDate(0, 0, 2)
	}
	return SnapToBusinessDay(next)
}

// SnapToBusinessDay moves weekend dates forward to Monday.
func SnapToBusinessDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}
