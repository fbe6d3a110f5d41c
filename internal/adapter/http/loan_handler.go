package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"microcredit-backend/internal/usecase/origination"
)

type LoanHandler struct{ uc *origination.Usecase }

func NewLoanHandler(uc *origination.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerID   string `json:"borrower_id"  validate:"required,hex32"`
	Principal    string `json:"principal"    validate:"required,dec2"`
	Frequency    string `json:"frequency"    validate:"required,oneof=daily weekly monthly"`
	Installments int    `json:"installments" validate:"required,gte=1"`
	// Canonical date YYYY-MM-DD (aligns with schema DATE)
	DisbursedOn string `json:"disbursed_on" validate:"required,datetime=2006-01-02"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	disbursed, _ := parseDate(req.DisbursedOn)

	dto, err := h.uc.CreateLoan(c.Request().Context(), origination.CreateLoanInput{
		BorrowerID:   req.BorrowerID,
		Principal:    decimal.RequireFromString(req.Principal),
		Frequency:    req.Frequency,
		Installments: req.Installments,
		DisbursedOn:  disbursed,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type memberShareReq struct {
	MemberID  string `json:"member_id" validate:"required,hex32"`
	Principal string `json:"principal" validate:"required,dec2"`
}

type createGroupLoanReq struct {
	GroupID      string           `json:"group_id"     validate:"required,hex32"`
	Frequency    string           `json:"frequency"    validate:"required,oneof=daily weekly monthly"`
	Installments int              `json:"installments" validate:"required,gte=1"`
	DisbursedOn  string           `json:"disbursed_on" validate:"required,datetime=2006-01-02"`
	Members      []memberShareReq `json:"members"      validate:"required,min=1,dive"`
}

func (h *LoanHandler) CreateGroupLoan(c echo.Context) error {
	var req createGroupLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	disbursed, _ := parseDate(req.DisbursedOn)

	in := origination.CreateGroupLoanInput{
		GroupID:      req.GroupID,
		Frequency:    req.Frequency,
		Installments: req.Installments,
		DisbursedOn:  disbursed,
	}
	for _, m := range req.Members {
		in.Members = append(in.Members, origination.MemberShare{
			MemberID:  m.MemberID,
			Principal: decimal.RequireFromString(m.Principal),
		})
	}

	dto, err := h.uc.CreateGroupLoan(c.Request().Context(), in)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetSchedule(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.GetSchedule(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
