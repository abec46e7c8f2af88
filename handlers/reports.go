package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"law_office_desk/middleware"
	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/access"
	"law_office_desk/services/export"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExportReport exports the filtered, visible records of one type.
// Query: type=cases|clients|offices|employees, format=txt|csv|pdf|docx|xlsx,
// the report filters, and archive=true to keep a copy in the export archive.
func (h *Handler) ExportReport(c echo.Context) error {
	ctx := c.Request().Context()
	identity := currentIdentity(c)
	lang := middleware.GetLocale(c)

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter, err := services.ParseReportFilter(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var table export.Table
	reportType := c.QueryParam("type")
	switch reportType {
	case services.ReportCases, "":
		reportType = services.ReportCases
		cases, err := h.Store.Cases(ctx)
		if err != nil {
			return storeError(err)
		}
		annotated := h.Classifier.Annotate(access.VisibleCases(identity, cases))
		table = services.CaseTable(lang, filter.FilterCases(annotated))
	case services.ReportClients:
		clients, err := h.Store.Clients(ctx)
		if err != nil {
			return storeError(err)
		}
		table = services.ClientTable(lang, filter.FilterClients(access.VisibleClients(identity, clients)))
	case services.ReportOffices:
		offices, err := h.Store.Offices(ctx)
		if err != nil {
			return storeError(err)
		}
		table = services.OfficeTable(lang, filter.FilterOffices(access.VisibleOffices(identity, offices)))
	case services.ReportEmployees:
		if identity.Role.IsStaff() {
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
		employees, err := h.Store.Employees(ctx)
		if err != nil {
			return storeError(err)
		}
		table = services.EmployeeTable(lang, filter.FilterEmployees(access.VisibleEmployees(identity, employees)))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report type")
	}

	data, err := h.Exporter.Table(ctx, table, format)
	if errors.Is(err, export.ErrUnsupportedFormat) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Error().Err(err).Str("type", reportType).Str("format", string(format)).Msg("Report export failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Export failed")
	}

	return h.sendExport(c, reportType, format, data)
}

// sendExport streams data as an attachment. With archive=true and an archive
// configured, a copy is stored first and its URL returned in X-Archive-URL.
func (h *Handler) sendExport(c echo.Context, kind string, format export.Format, data []byte) error {
	now := h.now()

	if archive, _ := strconv.ParseBool(c.QueryParam("archive")); archive && h.Archive != nil {
		identity := currentIdentity(c)
		office := identity.Office
		if office == "" {
			office = models.DefaultOffice
		}
		key := services.GenerateExportKey(office, kind, string(format), now)
		stored, err := h.Archive.Put(c.Request().Context(), key, data, format.ContentType())
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to archive export")
		} else {
			c.Response().Header().Set("X-Archive-URL", stored.URL)
		}
	}

	filename := format.Filename(fmt.Sprintf("%s_%s", kind, now.Format("20060102_150405")))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, format.ContentType(), data)
}
