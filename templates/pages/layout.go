package pages

import (
	"context"
	"fmt"
	"io"

	"law_office_desk/models"
	"law_office_desk/services/i18n"

	"github.com/a-h/templ"
)

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2937; background: #f9fafb; }
header { display: flex; justify-content: space-between; align-items: center; padding: 12px 24px; background: #1e3a8a; color: #fff; }
header form { display: inline; }
main { padding: 24px; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { border-bottom: 1px solid #e5e7eb; padding: 8px; text-align: left; }
.metrics { display: flex; gap: 12px; margin-bottom: 16px; }
.metric { background: #fff; padding: 12px 16px; border-radius: 8px; min-width: 110px; }
.alert { padding: 12px; border-radius: 8px; margin-bottom: 16px; }
.alert-warning { background: #fef3c7; color: #92400e; }
.alert-error { background: #fee2e2; color: #991b1b; }
.badge { padding: 2px 8px; border-radius: 12px; font-size: 0.85em; }
.badge-red { background: #fee2e2; } .badge-yellow { background: #fef9c3; } .badge-green { background: #dcfce7; }
.badge-blue { background: #dbeafe; } .badge-gray { background: #e5e7eb; }
`

// Layout wraps body in the page chrome. identity is nil on public pages.
func Layout(title string, identity *models.Identity, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := i18n.GetLocale(ctx)
		appTitle := i18n.T(ctx, "app.title")
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="%s"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s | %s</title><style>%s</style></head><body>`,
			templ.EscapeString(lang), templ.EscapeString(title), templ.EscapeString(appTitle), stylesheet); err != nil {
			return err
		}

		if identity != nil {
			if _, err := fmt.Fprintf(w, `<header><strong>%s</strong><span>%s (%s) <form method="post" action="/logout"><button type="submit">%s</button></form></span></header>`,
				templ.EscapeString(appTitle),
				templ.EscapeString(identity.Name),
				templ.EscapeString(string(identity.Role)),
				templ.EscapeString(i18n.T(ctx, "nav.logout"))); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "<main>"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}
