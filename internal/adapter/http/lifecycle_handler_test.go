package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainLoan "microcredit-backend/internal/domain/loan"
	domainSchedule "microcredit-backend/internal/domain/schedule"
	"microcredit-backend/internal/domain/uow"
	"microcredit-backend/internal/testutil/collateralmock"
	"microcredit-backend/internal/testutil/loanmock"
	"microcredit-backend/internal/testutil/obligationmock"
	"microcredit-backend/internal/testutil/uowmock"
	collateralUC "microcredit-backend/internal/usecase/collateral"
	"microcredit-backend/internal/usecase/lifecycle"
)

type verdictStub struct{ complete bool }

func (g verdictStub) IsComplete(context.Context, string) (bool, error) { return g.complete, nil }
func (g verdictStub) IsGroupComplete(context.Context, string) (bool, collateralUC.GroupSummary, error) {
	return g.complete, collateralUC.GroupSummary{}, nil
}

func lifecycleHandler(r uow.Repos, complete bool) *LifecycleHandler {
	sm := lifecycle.NewStateMachine(uowmock.Passthrough(r), verdictStub{complete: complete}, quietLog())
	return NewLifecycleHandler(sm)
}

func lockableLoan(loanID string, status domainLoan.Status) *loanmock.Repo {
	return &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, id string) (*domainLoan.Loan, error) {
			if id != loanID {
				return nil, gorm.ErrRecordNotFound
			}
			return &domainLoan.Loan{
				ID:           3,
				LoanID:       id,
				BorrowerKind: domainLoan.BorrowerMember,
				Principal:    decimal.RequireFromString("1000"),
				Frequency:    domainLoan.FrequencyWeekly,
				Installments: 4,
				InterestRate: decimal.RequireFromString("0.15"),
				Status:       status,
			}, nil
		},
		SaveFn: func(ctx context.Context, l *domainLoan.Loan) error { return nil },
	}
}

func transitionContext(e *echo.Echo, path, loanID string, body map[string]any) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := postJSON(e, "/loans/"+loanID+"/"+path, body)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	return c, rec
}

func TestApproveHandler_Success(t *testing.T) {
	e := newEchoWithValidator()
	loanID := strings.Repeat("a", 32)

	var inserted int
	repos := uow.Repos{
		Loans: lockableLoan(loanID, domainLoan.StatusPendingApproval),
		Obligations: &obligationmock.Repo{
			CreateBatchFn: func(ctx context.Context, obs []*domainSchedule.Obligation) error {
				inserted = len(obs)
				return nil
			},
		},
		Collaterals: &collateralmock.Repo{},
		Blocked:     &collateralmock.Ledger{},
	}
	h := lifecycleHandler(repos, true)

	c, rec := transitionContext(e, "approve", loanID, map[string]any{
		"operator_id": strings.Repeat("b", 32),
	})
	if err := h.Approve(c); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if inserted != 4 {
		t.Fatalf("inserted %d obligations, want 4", inserted)
	}
	var got lifecycle.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != string(domainLoan.StatusActive) {
		t.Fatalf("status = %s, want active", got.Status)
	}
}

func TestApproveHandler_StatusMapping(t *testing.T) {
	e := newEchoWithValidator()
	loanID := strings.Repeat("a", 32)

	tests := []struct {
		name     string
		status   domainLoan.Status
		complete bool
		want     int
	}{
		{"collateral gate blocks", domainLoan.StatusPendingApproval, false, stdhttp.StatusConflict},
		{"cancelled loan", domainLoan.StatusCancelled, true, stdhttp.StatusConflict},
		{"completed loan", domainLoan.StatusCompleted, true, stdhttp.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repos := uow.Repos{
				Loans:       lockableLoan(loanID, tc.status),
				Obligations: &obligationmock.Repo{},
				Collaterals: &collateralmock.Repo{},
				Blocked:     &collateralmock.Ledger{},
			}
			h := lifecycleHandler(repos, tc.complete)

			c, rec := transitionContext(e, "approve", loanID, map[string]any{
				"operator_id": strings.Repeat("b", 32),
			})
			if err := h.Approve(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}

	t.Run("unknown loan", func(t *testing.T) {
		repos := uow.Repos{
			Loans:       lockableLoan(loanID, domainLoan.StatusPendingApproval),
			Obligations: &obligationmock.Repo{},
			Collaterals: &collateralmock.Repo{},
			Blocked:     &collateralmock.Ledger{},
		}
		h := lifecycleHandler(repos, true)

		other := strings.Repeat("c", 32)
		c, rec := transitionContext(e, "approve", other, map[string]any{
			"operator_id": strings.Repeat("b", 32),
		})
		if err := h.Approve(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != stdhttp.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing operator id", func(t *testing.T) {
		h := lifecycleHandler(uow.Repos{}, true)
		c, rec := transitionContext(e, "approve", loanID, map[string]any{})
		if err := h.Approve(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestRejectHandler(t *testing.T) {
	e := newEchoWithValidator()
	loanID := strings.Repeat("a", 32)

	t.Run("pending loan cancels", func(t *testing.T) {
		repos := uow.Repos{
			Loans:       lockableLoan(loanID, domainLoan.StatusPendingGarantie),
			Collaterals: &collateralmock.Repo{},
		}
		h := lifecycleHandler(repos, false)

		c, rec := transitionContext(e, "reject", loanID, map[string]any{
			"operator_id": strings.Repeat("b", 32),
			"reason":      "incomplete documents",
		})
		if err := h.Reject(c); err != nil {
			t.Fatalf("Reject error: %v", err)
		}
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var got lifecycle.LoanDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if got.Status != string(domainLoan.StatusCancelled) || got.RejectReason != "incomplete documents" {
			t.Fatalf("unexpected dto: %+v", got)
		}
	})

	t.Run("active loan conflicts", func(t *testing.T) {
		repos := uow.Repos{
			Loans:       lockableLoan(loanID, domainLoan.StatusActive),
			Collaterals: &collateralmock.Repo{},
		}
		h := lifecycleHandler(repos, false)

		c, rec := transitionContext(e, "reject", loanID, map[string]any{
			"operator_id": strings.Repeat("b", 32),
			"reason":      "too late",
		})
		if err := h.Reject(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing reason", func(t *testing.T) {
		h := lifecycleHandler(uow.Repos{}, false)
		c, rec := transitionContext(e, "reject", loanID, map[string]any{
			"operator_id": strings.Repeat("b", 32),
		})
		if err := h.Reject(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestSubmitHandler_Override(t *testing.T) {
	e := newEchoWithValidator()
	loanID := strings.Repeat("a", 32)

	repos := uow.Repos{
		Loans: lockableLoan(loanID, domainLoan.StatusPendingGarantie),
		Collaterals: &collateralmock.Repo{
			ListByLoanIDFn: func(ctx context.Context, id uint64) ([]*domainCollateral.Record, error) {
				return []*domainCollateral.Record{{
					Required:  decimal.RequireFromString("100"),
					Deposited: decimal.RequireFromString("40"),
				}}, nil
			},
		},
		Blocked: &collateralmock.Ledger{},
	}
	h := lifecycleHandler(repos, false)

	// without override the incomplete collateral blocks
	c, rec := transitionContext(e, "submit", loanID, map[string]any{
		"operator_id": strings.Repeat("b", 32),
	})
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	c, rec = transitionContext(e, "submit", loanID, map[string]any{
		"operator_id": strings.Repeat("b", 32),
		"override":    true,
	})
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit override error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got lifecycle.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != string(domainLoan.StatusPendingApproval) {
		t.Fatalf("status = %s, want pending_approval", got.Status)
	}
}
