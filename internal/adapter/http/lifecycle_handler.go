package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microcredit-backend/internal/usecase/lifecycle"
)

type LifecycleHandler struct{ sm *lifecycle.StateMachine }

func NewLifecycleHandler(sm *lifecycle.StateMachine) *LifecycleHandler {
	return &LifecycleHandler{sm: sm}
}

type transitionReq struct {
	OperatorID string `json:"operator_id" validate:"required,hex32"`
	Override   bool   `json:"override"`
}

type rejectReq struct {
	OperatorID string `json:"operator_id" validate:"required,hex32"`
	Reason     string `json:"reason"      validate:"required"`
}

func (h *LifecycleHandler) bindTransition(c echo.Context) (string, *transitionReq, error) {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return "", nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return "", nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return "", nil, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return loanID, &req, nil
}

func (h *LifecycleHandler) Submit(c echo.Context) error {
	loanID, req, err := h.bindTransition(c)
	if req == nil {
		return err
	}
	dto, err := h.sm.Submit(c.Request().Context(), lifecycle.SubmitInput{
		LoanID:     loanID,
		OperatorID: req.OperatorID,
		Override:   req.Override,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LifecycleHandler) Approve(c echo.Context) error {
	loanID, req, err := h.bindTransition(c)
	if req == nil {
		return err
	}
	dto, err := h.sm.Approve(c.Request().Context(), lifecycle.ApproveInput{
		LoanID:     loanID,
		OperatorID: req.OperatorID,
		Override:   req.Override,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LifecycleHandler) ApproveGroup(c echo.Context) error {
	loanID, req, err := h.bindTransition(c)
	if req == nil {
		return err
	}
	dto, err := h.sm.ApproveGroup(c.Request().Context(), lifecycle.ApproveInput{
		LoanID:     loanID,
		OperatorID: req.OperatorID,
		Override:   req.Override,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LifecycleHandler) Reject(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.sm.Reject(c.Request().Context(), lifecycle.RejectInput{
		LoanID:     loanID,
		OperatorID: req.OperatorID,
		Reason:     req.Reason,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
