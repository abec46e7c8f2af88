package partials

import (
	"context"
	"fmt"
	"io"

	"law_office_desk/services/i18n"
	"law_office_desk/services/status"

	"github.com/a-h/templ"
)

// StatusClass is the CSS class of a status badge.
func StatusClass(tag status.Tag) string {
	switch tag {
	case status.Overdue:
		return "badge badge-red"
	case status.DueSoon:
		return "badge badge-yellow"
	case status.Normal:
		return "badge badge-green"
	case status.Active:
		return "badge badge-blue"
	default:
		return "badge badge-gray"
	}
}

// StatusIcon mirrors the colored markers used in the office's spreadsheets.
func StatusIcon(tag status.Tag) string {
	switch tag {
	case status.Overdue:
		return "🔴"
	case status.DueSoon:
		return "🟡"
	case status.Normal:
		return "🟢"
	case status.Active:
		return "🔵"
	default:
		return "⚫"
	}
}

// StatusBadge renders the translated status label.
func StatusBadge(tag status.Tag) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		label := i18n.T(ctx, "status."+string(tag))
		_, err := fmt.Fprintf(w, `<span class="%s">%s %s</span>`,
			templ.EscapeString(StatusClass(tag)), StatusIcon(tag), templ.EscapeString(label))
		return err
	})
}

// Warning renders a store warning banner. An empty message renders nothing.
func Warning(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, `<div class="alert alert-warning" role="alert">%s</div>`, templ.EscapeString(message))
		return err
	})
}

// FormatDays renders the days-remaining column.
func FormatDays(ctx context.Context, days int) string {
	return i18n.T(ctx, "dashboard.days_remaining", map[string]interface{}{"days": days})
}
