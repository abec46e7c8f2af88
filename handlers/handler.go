package handlers

import (
	"errors"
	"net/http"

	"law_office_desk/config"
	"law_office_desk/middleware"
	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/access"
	"law_office_desk/services/drafting"
	"law_office_desk/services/export"
	"law_office_desk/services/judicial"
	"law_office_desk/services/sheets"
	"law_office_desk/services/status"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	Config     *config.Config
	DB         *gorm.DB // session store
	Store      *sheets.Gateway
	Access     *access.Service
	Drafting   *drafting.Client
	Court      judicial.Provider
	Exporter   *export.Exporter
	Archive    services.Archive // optional; exports are archived on request
	Classifier *status.Classifier
	Monitor    *services.LoginMonitor // optional; tracks failed logins
}

// Register mounts the application routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	})
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)

	auth := middleware.RequireAuth(h.DB)
	e.POST("/logout", h.Logout, auth)
	e.GET("/dashboard", h.Dashboard, auth)

	api := e.Group("/api", auth)
	api.GET("/cases", h.ListCases)
	api.POST("/cases", h.CreateCase)
	api.GET("/clients", h.ListClients)
	api.POST("/clients", h.CreateClient)
	api.GET("/employees", h.ListEmployees)
	api.POST("/employees", h.CreateEmployee, middleware.RequireRole(models.RoleOwner, models.RoleManager))
	api.GET("/drafts", h.ListDrafts)
	api.GET("/drafts/kinds", h.ListPetitionKinds)
	api.POST("/drafts", h.GenerateDraft)
	api.POST("/drafts/export", h.ExportDraft)
	api.GET("/court/:number", h.CourtMovements)
	api.GET("/reports/export", h.ExportReport)

	ownerOnly := middleware.RequireRole(models.RoleOwner)
	api.GET("/offices", h.ListOffices, ownerOnly)
	api.POST("/offices", h.CreateOffice, ownerOnly)
	api.PUT("/employees/areas", h.UpdateEmployeeAreas, ownerOnly)
	api.GET("/security/alerts", h.SecurityAlerts, ownerOnly)
}

// listResponse is the JSON shape of every list endpoint. Warning is set when the
// external store could not be read and Records is therefore empty.
type listResponse struct {
	Records any    `json:"records"`
	Warning string `json:"warning,omitempty"`
}

// savedResponse is returned after a record is accepted by the external store.
type savedResponse struct {
	Message string `json:"message"`
	Record  any    `json:"record"`
}

// currentIdentity returns the identity placed in the context by RequireAuth.
func currentIdentity(c echo.Context) models.Identity {
	if id := middleware.GetCurrentIdentity(c); id != nil {
		return *id
	}
	return models.Identity{}
}

// storeError maps a gateway failure to a 502 carrying the banner text.
func storeError(err error) error {
	var gerr *sheets.GatewayError
	if errors.As(err, &gerr) {
		return echo.NewHTTPError(http.StatusBadGateway, sheets.Warning(err))
	}
	log.Error().Err(err).Msg("Unexpected store error")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal error")
}

// render writes an HTML component with the given status code.
func render(c echo.Context, code int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
