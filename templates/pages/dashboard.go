package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"law_office_desk/services"
	"law_office_desk/services/i18n"
	"law_office_desk/services/status"
	"law_office_desk/templates/components"
	"law_office_desk/templates/partials"

	"github.com/a-h/templ"
)

// Dashboard renders the case overview: per-status metrics, filters and the case table.
func Dashboard(ctx context.Context, view DashboardView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<h1>%s</h1>`, templ.EscapeString(i18n.T(ctx, "dashboard.title")))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := partials.Warning(view.Warning).Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		writeMetrics(ctx, &b, view.Data.Summary)
		writeFilters(ctx, &b, view)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return writeCaseTable(ctx, w, view.Data.Cases)
	})
	return Layout(i18n.T(ctx, "nav.dashboard"), view.Identity, body)
}

func writeMetrics(ctx context.Context, b *strings.Builder, s status.Summary) {
	counts := make(map[string]int, len(s.Counts))
	for tag, n := range s.Counts {
		counts[string(tag)] = n
	}
	fmt.Fprintf(b, `<section class="metrics" data-summary="%s">`, components.DataAttr(counts))
	fmt.Fprintf(b, `<div class="metric"><div>%s</div><strong>%d</strong></div>`, templ.EscapeString(i18n.T(ctx, "dashboard.total")), s.Total)
	for _, tag := range status.Tags {
		fmt.Fprintf(b, `<div class="metric"><div>%s %s</div><strong>%d</strong></div>`,
			partials.StatusIcon(tag), templ.EscapeString(i18n.T(ctx, "status."+string(tag))), s.Counts[tag])
	}
	b.WriteString(`</section>`)
}

func writeFilters(ctx context.Context, b *strings.Builder, view DashboardView) {
	all := i18n.T(ctx, "dashboard.filters.all")
	b.WriteString(`<form method="get" action="/dashboard" class="filters">`)

	writeSelect(b, i18n.T(ctx, "dashboard.filters.area"), "area", view.Filter.Area, all, optionPairs(view.Data.Areas))

	var statuses [][2]string
	for _, tag := range status.Tags {
		statuses = append(statuses, [2]string{string(tag), i18n.T(ctx, "status."+string(tag))})
	}
	writeSelect(b, i18n.T(ctx, "dashboard.filters.status"), "status", view.Filter.Status, all, statuses)

	writeSelect(b, i18n.T(ctx, "dashboard.filters.office"), "escritorio", view.Filter.Office, all, optionPairs(view.Data.Offices))

	fmt.Fprintf(b, `<button type="submit">%s</button></form>`, templ.EscapeString(i18n.T(ctx, "dashboard.filters.apply")))
}

func optionPairs(values []string) [][2]string {
	out := make([][2]string, 0, len(values))
	for _, v := range values {
		out = append(out, [2]string{v, v})
	}
	return out
}

func writeSelect(b *strings.Builder, label, name, current, all string, options [][2]string) {
	fmt.Fprintf(b, `<label>%s <select name="%s"><option value="%s">%s</option>`,
		templ.EscapeString(label), name, services.AllFilter, templ.EscapeString(all))
	for _, opt := range options {
		sel := ""
		if opt[0] == current {
			sel = " selected"
		}
		fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, templ.EscapeString(opt[0]), sel, templ.EscapeString(opt[1]))
	}
	b.WriteString(`</select></label>`)
}

func writeCaseTable(ctx context.Context, w io.Writer, cases []status.Annotated) error {
	if len(cases) == 0 {
		_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`, templ.EscapeString(i18n.T(ctx, "dashboard.empty")))
		return err
	}

	headers := []string{"table.number", "table.client", "table.area", "table.deadline", "table.days", "table.responsible", "table.status"}
	var b strings.Builder
	b.WriteString(`<table><thead><tr>`)
	for _, h := range headers {
		fmt.Fprintf(&b, `<th>%s</th>`, templ.EscapeString(i18n.T(ctx, h)))
	}
	b.WriteString(`</tr></thead><tbody>`)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, c := range cases {
		if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>`,
			templ.EscapeString(c.Number),
			templ.EscapeString(c.ClientName),
			templ.EscapeString(c.Area),
			templ.EscapeString(c.Deadline.String()),
			templ.EscapeString(partials.FormatDays(ctx, c.DaysRemaining)),
			templ.EscapeString(c.Responsible)); err != nil {
			return err
		}
		if err := partials.StatusBadge(c.Status).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</td></tr>`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</tbody></table>`)
	return err
}
