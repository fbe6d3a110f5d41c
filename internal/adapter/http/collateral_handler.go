package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"microcredit-backend/internal/usecase/collateral"
)

type CollateralHandler struct{ ledger *collateral.Ledger }

func NewCollateralHandler(ledger *collateral.Ledger) *CollateralHandler {
	return &CollateralHandler{ledger: ledger}
}

type collateralMovementReq struct {
	Amount string `json:"amount" validate:"required,dec2"`
	Date   string `json:"date"   validate:"required,datetime=2006-01-02"`
}

func (h *CollateralHandler) Deposit(c echo.Context) error {
	collateralID := c.Param("collateral_id")
	if collateralID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing collateral_id path param"})
	}
	var req collateralMovementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	date, _ := parseDate(req.Date)

	rec, err := h.ledger.RecordDeposit(c.Request().Context(), collateralID, decimal.RequireFromString(req.Amount), date)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *CollateralHandler) Withdraw(c echo.Context) error {
	collateralID := c.Param("collateral_id")
	if collateralID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing collateral_id path param"})
	}
	var req collateralMovementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	date, _ := parseDate(req.Date)

	rec, err := h.ledger.RecordWithdrawal(c.Request().Context(), collateralID, decimal.RequireFromString(req.Amount), date)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// CollateralStatus reports the activation verdict for an individual loan.
func (h *CollateralHandler) CollateralStatus(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	complete, err := h.ledger.IsComplete(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":  loanID,
		"complete": complete,
	})
}

// GroupCollateralStatus reports the group verdict plus the member rollup.
func (h *CollateralHandler) GroupCollateralStatus(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	complete, summary, err := h.ledger.IsGroupComplete(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":  loanID,
		"complete": complete,
		"summary":  summary,
	})
}
