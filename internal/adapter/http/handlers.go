package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domainCollateral "microcredit-backend/internal/domain/collateral"
	domainLoan "microcredit-backend/internal/domain/loan"
	"microcredit-backend/internal/usecase/origination"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// writeDomainErr maps domain sentinels onto HTTP statuses: bad amounts and
// transitions are unprocessable, unknown ids are 404, unmet prerequisites
// and terminal records are conflicts.
func writeDomainErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainCollateral.ErrInvalidAmount),
		errors.Is(err, domainLoan.ErrInvalidTransition),
		errors.Is(err, origination.ErrInvalidInput):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, domainCollateral.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainCollateral.ErrPrerequisiteNotMet),
		errors.Is(err, domainLoan.ErrAlreadyTerminal),
		errors.Is(err, domainCollateral.ErrAlreadyTerminal):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// parseDate accepts the canonical YYYY-MM-DD wire format.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
