package handlers

import (
	"errors"
	"net/http"
	"strings"

	"law_office_desk/models"
	"law_office_desk/services/access"
	"law_office_desk/services/drafting"
	"law_office_desk/services/export"
	"law_office_desk/services/i18n"
	"law_office_desk/services/sheets"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DefaultDetail is the detail level preselected on the petition form.
const DefaultDetail = 0.7

type draftRequest struct {
	Kind       string  `json:"tipo_peticao" form:"tipo_peticao"`
	Context    string  `json:"contexto" form:"contexto"`
	Style      string  `json:"estilo" form:"estilo"`
	Detail     float64 `json:"detalhe" form:"detalhe"`
	Client     string  `json:"cliente" form:"cliente"`
	CaseNumber string  `json:"numero" form:"numero"`
}

type draftResponse struct {
	Text      string `json:"text"`
	Attempts  int    `json:"attempts"`
	LatencyMS int64  `json:"latency_ms"`
	Warning   string `json:"warning,omitempty"`
}

type draftExportRequest struct {
	Title  string `json:"titulo" form:"titulo"`
	Text   string `json:"texto" form:"texto"`
	Format string `json:"formato" form:"formato"`
}

// ListDrafts returns the visible draft history, optionally narrowed by case number (?case=).
func (h *Handler) ListDrafts(c echo.Context) error {
	drafts, err := h.Store.Drafts(c.Request().Context())
	visible := access.VisibleDrafts(currentIdentity(c), drafts)

	if q := strings.ToLower(strings.TrimSpace(c.QueryParam("case"))); q != "" {
		filtered := make([]models.DraftRecord, 0, len(visible))
		for _, d := range visible {
			if strings.Contains(strings.ToLower(d.CaseNumber), q) {
				filtered = append(filtered, d)
			}
		}
		visible = filtered
	}
	return c.JSON(http.StatusOK, listResponse{Records: visible, Warning: sheets.Warning(err)})
}

// ListPetitionKinds returns the petition kinds offered by the drafting form.
func (h *Handler) ListPetitionKinds(c echo.Context) error {
	return c.JSON(http.StatusOK, listResponse{Records: models.PetitionKinds})
}

// GenerateDraft asks the drafting service for a petition and records it in the history.
// Drafting failures are reported verbatim; a history write failure only adds a warning.
func (h *Handler) GenerateDraft(c echo.Context) error {
	ctx := c.Request().Context()
	identity := currentIdentity(c)

	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid draft payload")
	}
	if req.Detail == 0 {
		req.Detail = DefaultDetail
	}

	petition := drafting.Petition{Kind: req.Kind, Context: req.Context, Style: req.Style, Detail: req.Detail}
	if err := petition.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.Drafting.Generate(ctx, petition.Request())
	if err != nil {
		if errors.Is(err, drafting.ErrInvalidRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, i18n.T(ctx, "drafts.failed", map[string]interface{}{"error": err.Error()}))
	}

	resp := draftResponse{Text: result.Text, Attempts: result.Attempts, LatencyMS: result.Latency.Milliseconds()}

	record := models.NewDraftRecord(req.Kind, identity, req.Client, req.CaseNumber, result.Text, h.now())
	if err := h.Store.Submit(ctx, models.RecordTypeDraft, record); err != nil {
		resp.Warning = sheets.Warning(err)
	} else {
		h.Store.Invalidate(ctx, models.RecordTypeDraft)
	}
	return c.JSON(http.StatusOK, resp)
}

// ExportDraft converts generated text into a downloadable document (txt, pdf or docx).
func (h *Handler) ExportDraft(c echo.Context) error {
	ctx := c.Request().Context()

	var req draftExportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid export payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return validationError(c, models.ErrMissingFields)
	}
	if req.Title == "" {
		req.Title = "Petição"
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := h.Exporter.Document(ctx, req.Title, req.Text, format)
	if errors.Is(err, export.ErrUnsupportedFormat) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("Draft export failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Export failed")
	}

	return h.sendExport(c, "peticao", format, data)
}
