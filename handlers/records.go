package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/access"
	"law_office_desk/services/i18n"
	"law_office_desk/services/sheets"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// publicEmployee hides the login secret whenever an employee is sent to a client.
type publicEmployee struct {
	models.Employee
	Secret string `json:"senha,omitempty"`
}

func (h *Handler) now() time.Time {
	if h.Classifier != nil && h.Classifier.Now != nil {
		return h.Classifier.Now()
	}
	return time.Now()
}

// scopeOffice returns the office a new record is filed under. Only owners may
// pick an office; everybody else writes into their own.
func scopeOffice(id models.Identity, requested string) string {
	if requested = strings.TrimSpace(requested); id.IsOwner() && requested != "" {
		return requested
	}
	if id.Office != "" {
		return id.Office
	}
	return models.DefaultOffice
}

func validationError(c echo.Context, err error) error {
	log.Debug().Err(err).Str("path", c.Path()).Msg("Form validation failed")
	return echo.NewHTTPError(http.StatusBadRequest, i18n.T(c.Request().Context(), "form.required"))
}

// save submits record, drops the cached list of its type and echoes it back.
func (h *Handler) save(c echo.Context, recordType string, record any) error {
	return h.saveAs(c, recordType, record, record)
}

// saveAs is save with a separate value echoed to the client.
func (h *Handler) saveAs(c echo.Context, recordType string, record, shown any) error {
	ctx := c.Request().Context()
	if err := h.Store.Submit(ctx, recordType, record); err != nil {
		return storeError(err)
	}
	h.Store.Invalidate(ctx, recordType)
	return c.JSON(http.StatusCreated, savedResponse{Message: i18n.T(ctx, "form.saved"), Record: shown})
}

// ListCases returns the visible cases with their status, in display order.
// Accepts the report filters as query parameters.
func (h *Handler) ListCases(c echo.Context) error {
	filter, err := services.ParseReportFilter(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cases, err := h.Store.Cases(c.Request().Context())
	annotated := h.Classifier.Annotate(access.VisibleCases(currentIdentity(c), cases))
	return c.JSON(http.StatusOK, listResponse{Records: filter.FilterCases(annotated), Warning: sheets.Warning(err)})
}

// CreateCase registers a new case
func (h *Handler) CreateCase(c echo.Context) error {
	identity := currentIdentity(c)

	var kase models.Case
	if err := c.Bind(&kase); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid case payload")
	}
	if err := kase.Validate(); err != nil {
		return validationError(c, err)
	}
	if identity.Role.IsStaff() && !identity.HasArea(kase.Area) {
		return echo.NewHTTPError(http.StatusForbidden, "Area not permitted")
	}

	now := h.now()
	kase.Office = scopeOffice(identity, kase.Office)
	if kase.Responsible == "" {
		kase.Responsible = identity.Username
	}
	if kase.StartDate.IsZero() {
		kase.StartDate = models.NewDate(now)
	}
	if kase.Deadline.IsZero() {
		kase.Deadline = models.NewDate(now)
	}
	kase.CreatedAt = models.Timestamp{Time: now}

	return h.save(c, models.RecordTypeCase, kase)
}

// ListClients returns the clients visible to the current identity
func (h *Handler) ListClients(c echo.Context) error {
	clients, err := h.Store.Clients(c.Request().Context())
	return c.JSON(http.StatusOK, listResponse{Records: access.VisibleClients(currentIdentity(c), clients), Warning: sheets.Warning(err)})
}

// CreateClient registers a new client
func (h *Handler) CreateClient(c echo.Context) error {
	identity := currentIdentity(c)

	var client models.Client
	if err := c.Bind(&client); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid client payload")
	}
	if err := client.Validate(); err != nil {
		return validationError(c, err)
	}

	client.Office = scopeOffice(identity, client.Office)
	client.CreatedBy = identity.Username
	client.CreatedAt = models.Timestamp{Time: h.now()}

	return h.save(c, models.RecordTypeClient, client)
}

// ListOffices returns every office (owner only)
func (h *Handler) ListOffices(c echo.Context) error {
	offices, err := h.Store.Offices(c.Request().Context())
	return c.JSON(http.StatusOK, listResponse{Records: access.VisibleOffices(currentIdentity(c), offices), Warning: sheets.Warning(err)})
}

// CreateOffice registers a new office (owner only)
func (h *Handler) CreateOffice(c echo.Context) error {
	var office models.Office
	if err := c.Bind(&office); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid office payload")
	}
	if err := office.Validate(); err != nil {
		return validationError(c, err)
	}
	if err := access.ValidateAreas(office.Areas); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	office.CreatedAt = models.Timestamp{Time: h.now()}
	return h.save(c, models.RecordTypeOffice, office)
}

// ListEmployees returns the visible employees without their secrets
func (h *Handler) ListEmployees(c echo.Context) error {
	employees, err := h.Store.Employees(c.Request().Context())
	visible := access.VisibleEmployees(currentIdentity(c), employees)

	out := make([]publicEmployee, 0, len(visible))
	for _, e := range visible {
		out = append(out, publicEmployee{Employee: e})
	}
	return c.JSON(http.StatusOK, listResponse{Records: out, Warning: sheets.Warning(err)})
}

// CreateEmployee registers a staff member. Managers may add lawyers and
// assistants to their own office; owners may also add managers.
func (h *Handler) CreateEmployee(c echo.Context) error {
	identity := currentIdentity(c)

	var employee models.Employee
	if err := c.Bind(&employee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid employee payload")
	}
	if err := employee.Validate(); err != nil {
		return validationError(c, err)
	}

	employee.Role = models.ParseRole(string(employee.Role))
	if employee.Role == "" {
		employee.Role = models.RoleAssistant
	}
	switch employee.Role {
	case models.RoleLawyer, models.RoleAssistant:
	case models.RoleManager:
		if !identity.IsOwner() {
			return echo.NewHTTPError(http.StatusForbidden, "Only owners can register managers")
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	if len(employee.Area) == 0 {
		employee.Area = models.AreaList{models.AllAreas}
	}
	if err := access.ValidateAreas(employee.Area); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	employee.Office = scopeOffice(identity, employee.Office)
	employee.CreatedBy = identity.Username
	employee.CreatedAt = models.Timestamp{Time: h.now()}

	return h.saveAs(c, models.RecordTypeEmployee, employee, publicEmployee{Employee: employee})
}

// UpdateEmployeeAreas reassigns an employee's practice areas (owner only).
// The employee's open sessions are ended so the new areas apply at next login.
func (h *Handler) UpdateEmployeeAreas(c echo.Context) error {
	ctx := c.Request().Context()

	var update models.PermissionUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid permission payload")
	}
	update.Name = strings.TrimSpace(update.Name)
	if update.Name == "" {
		return validationError(c, models.ErrMissingFields)
	}

	err := h.Access.UpdateAreas(ctx, update.Name, update.Area)
	switch {
	case errors.Is(err, access.ErrInvalidArea):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrEmployeeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, i18n.T(ctx, "permissions.not_found"))
	case err != nil:
		return storeError(err)
	}

	employees, err := h.Store.Employees(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not reload roster after permission update")
	}
	for _, e := range employees {
		if e.Name == update.Name && e.Username != "" {
			if err := services.DeleteUserSessions(h.DB, e.Username); err != nil {
				log.Error().Err(err).Str("username", e.Username).Msg("Failed to end sessions")
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": i18n.T(ctx, "permissions.updated")})
}
