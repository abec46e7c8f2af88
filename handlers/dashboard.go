package handlers

import (
	"net/http"

	"law_office_desk/services"
	"law_office_desk/services/access"
	"law_office_desk/services/sheets"
	"law_office_desk/templates/pages"

	"github.com/labstack/echo/v4"
)

// Dashboard renders the case overview for the current identity.
// A store outage degrades to an empty dashboard with a warning banner.
func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	identity := currentIdentity(c)

	cases, err := h.Store.Cases(ctx)
	annotated := h.Classifier.Annotate(access.VisibleCases(identity, cases))

	filter := services.DashboardFilter{
		Area:   c.QueryParam("area"),
		Status: c.QueryParam("status"),
		Office: c.QueryParam("escritorio"),
	}

	view := pages.DashboardView{
		Identity: &identity,
		Filter:   filter,
		Data:     services.BuildDashboard(annotated, filter),
		Warning:  sheets.Warning(err),
	}
	return render(c, http.StatusOK, pages.Dashboard(ctx, view))
}
