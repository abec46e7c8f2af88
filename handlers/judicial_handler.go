package handlers

import (
	"net/http"
	"strings"

	"law_office_desk/services/judicial"

	"github.com/labstack/echo/v4"
)

type courtResponse struct {
	Number    string   `json:"numero"`
	Movements []string `json:"movimentacoes"`
}

// CourtMovements returns the latest docket movements of a case from the court site.
// Lookup failures degrade to a single message line rather than an error status.
func (h *Handler) CourtMovements(c echo.Context) error {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Case number is required")
	}

	movements := judicial.RecentMovements(c.Request().Context(), h.Court, number)
	return c.JSON(http.StatusOK, courtResponse{Number: number, Movements: movements})
}
