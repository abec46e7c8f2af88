package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"law_office_desk/models"
	"law_office_desk/services/export"
	"law_office_desk/services/i18n"
	"law_office_desk/services/status"
)

// Report types accepted by the export endpoint and the CLI.
const (
	ReportCases     = "cases"
	ReportClients   = "clients"
	ReportOffices   = "offices"
	ReportEmployees = "employees"
)

// ReportFilter narrows a record set before export.
// Fields maps a wire key to a case-insensitive substring; From/To bound the creation date.
type ReportFilter struct {
	Fields map[string]string
	Status status.Tag
	From   time.Time
	To     time.Time
}

// reportFilterKeys are the query parameters copied into ReportFilter.Fields.
var reportFilterKeys = []string{"area", "escritorio", "responsavel", "cliente", "nome"}

// ParseReportFilter reads a ReportFilter from query values.
// Dates use YYYY-MM-DD in data_inicio and data_fim.
func ParseReportFilter(q url.Values) (ReportFilter, error) {
	f := ReportFilter{Fields: map[string]string{}}
	for _, key := range reportFilterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			f.Fields[key] = v
		}
	}

	if s := strings.TrimSpace(q.Get("status")); s != "" {
		tag, ok := status.ParseTag(s)
		if !ok {
			return f, fmt.Errorf("invalid status filter: %q", s)
		}
		f.Status = tag
	}

	var err error
	if f.From, err = parseFilterDate(q.Get("data_inicio")); err != nil {
		return f, err
	}
	if f.To, err = parseFilterDate(q.Get("data_fim")); err != nil {
		return f, err
	}
	return f, nil
}

func parseFilterDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date filter %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// matches applies the field and date-range rules to one record.
// Keys the record does not carry are ignored.
func (f ReportFilter) matches(fields map[string]string, created time.Time) bool {
	for key, want := range f.Fields {
		got, ok := fields[key]
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			return false
		}
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	if created.IsZero() {
		return false
	}
	day := models.CivilDate(created)
	if !f.From.IsZero() && day.Before(models.CivilDate(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(models.CivilDate(f.To)) {
		return false
	}
	return true
}

// FilterCases keeps the annotated cases matching f, including its status.
func (f ReportFilter) FilterCases(cases []status.Annotated) []status.Annotated {
	out := make([]status.Annotated, 0, len(cases))
	for _, c := range cases {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		fields := map[string]string{
			"area":        c.Area,
			"escritorio":  c.Office,
			"responsavel": c.Responsible,
			"cliente":     c.ClientName,
		}
		if f.matches(fields, c.CreatedAt.Time) {
			out = append(out, c)
		}
	}
	return out
}

// FilterClients keeps the clients matching f.
func (f ReportFilter) FilterClients(clients []models.Client) []models.Client {
	out := make([]models.Client, 0, len(clients))
	for _, c := range clients {
		fields := map[string]string{
			"nome":        c.Name,
			"escritorio":  c.Office,
			"responsavel": c.CreatedBy,
		}
		if f.matches(fields, c.CreatedAt.Time) {
			out = append(out, c)
		}
	}
	return out
}

// FilterOffices keeps the offices matching f.
func (f ReportFilter) FilterOffices(offices []models.Office) []models.Office {
	out := make([]models.Office, 0, len(offices))
	for _, o := range offices {
		fields := map[string]string{
			"nome":        o.Name,
			"escritorio":  o.Name,
			"area":        o.Areas.String(),
			"responsavel": o.TechnicalContact.Name,
		}
		if f.matches(fields, o.CreatedAt.Time) {
			out = append(out, o)
		}
	}
	return out
}

// FilterEmployees keeps the employees matching f.
func (f ReportFilter) FilterEmployees(employees []models.Employee) []models.Employee {
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		fields := map[string]string{
			"nome":       e.Name,
			"escritorio": e.Office,
			"area":       e.Area.String(),
		}
		if f.matches(fields, e.CreatedAt.Time) {
			out = append(out, e)
		}
	}
	return out
}

// ApplyFilters filters raw store records. A filtered key missing from a record counts as empty.
// Date bounds use data_cadastro, falling back to cadastro.
func ApplyFilters(records []map[string]any, f ReportFilter) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		fields := make(map[string]string, len(r)+len(f.Fields))
		for key := range f.Fields {
			fields[key] = ""
		}
		for k, v := range r {
			if v != nil {
				fields[k] = fmt.Sprint(v)
			}
		}
		created := fields["data_cadastro"]
		if created == "" {
			created = fields["cadastro"]
		}
		var at time.Time
		if created != "" {
			at, _ = models.ParseTimestamp(created)
		}
		if f.matches(fields, at) {
			out = append(out, r)
		}
	}
	return out
}

// CaseTable builds the case report. The TXT rendering keeps the short pipe-delimited layout.
func CaseTable(lang string, cases []status.Annotated) export.Table {
	t := export.Table{
		Title: i18n.Translate(lang, "report.title") + " - " + i18n.Translate(lang, "nav.cases"),
		Headers: []string{
			i18n.Translate(lang, "table.number"),
			i18n.Translate(lang, "table.client"),
			i18n.Translate(lang, "table.area"),
			i18n.Translate(lang, "table.deadline"),
			i18n.Translate(lang, "table.responsible"),
			i18n.Translate(lang, "table.status"),
		},
	}
	for _, c := range cases {
		row := []string{c.Number, c.ClientName, c.Area, c.Deadline.String(), c.Responsible}
		t.Lines = append(t.Lines, export.TextRow(row))
		t.Rows = append(t.Rows, append(row, i18n.Translate(lang, "status."+string(c.Status))))
	}
	return t
}

// ClientTable builds the client report.
func ClientTable(lang string, clients []models.Client) export.Table {
	t := export.Table{
		Title: i18n.Translate(lang, "report.title") + " - " + i18n.Translate(lang, "nav.clients"),
		Headers: []string{
			i18n.Translate(lang, "table.name"),
			i18n.Translate(lang, "table.email"),
			i18n.Translate(lang, "table.phone"),
		},
	}
	for _, c := range clients {
		t.Rows = append(t.Rows, []string{c.Name, c.Email, c.Phone})
	}
	return t
}

// OfficeTable builds the office report.
func OfficeTable(lang string, offices []models.Office) export.Table {
	t := export.Table{
		Title: i18n.Translate(lang, "report.title") + " - " + i18n.Translate(lang, "nav.offices"),
		Headers: []string{
			i18n.Translate(lang, "table.name"),
			i18n.Translate(lang, "table.address"),
			i18n.Translate(lang, "table.phone"),
		},
	}
	for _, o := range offices {
		t.Rows = append(t.Rows, []string{o.Name, o.Address, o.Phone})
	}
	return t
}

// EmployeeTable builds the employee report. Secrets are never exported.
func EmployeeTable(lang string, employees []models.Employee) export.Table {
	t := export.Table{
		Title: i18n.Translate(lang, "report.title") + " - " + i18n.Translate(lang, "nav.employees"),
		Headers: []string{
			i18n.Translate(lang, "table.name"),
			i18n.Translate(lang, "table.email"),
			i18n.Translate(lang, "table.phone"),
		},
	}
	for _, e := range employees {
		t.Rows = append(t.Rows, []string{e.Name, e.Email, e.Phone})
	}
	return t
}
