package pages

import (
	"context"
	"fmt"
	"io"

	"law_office_desk/services/i18n"

	"github.com/a-h/templ"
)

// Login renders the sign-in form. errorMessage is shown above the form when set.
func Login(ctx context.Context, username, errorMessage string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1>%s</h1>`, templ.EscapeString(i18n.T(ctx, "login.title"))); err != nil {
			return err
		}
		if errorMessage != "" {
			if _, err := fmt.Fprintf(w, `<div class="alert alert-error" role="alert">%s</div>`, templ.EscapeString(errorMessage)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<form method="post" action="/login">`+
			`<label>%s <input type="text" name="username" value="%s" required autofocus></label>`+
			`<label>%s <input type="password" name="password" required></label>`+
			`<button type="submit">%s</button></form>`,
			templ.EscapeString(i18n.T(ctx, "login.username")),
			templ.EscapeString(username),
			templ.EscapeString(i18n.T(ctx, "login.password")),
			templ.EscapeString(i18n.T(ctx, "login.submit")))
		return err
	})
	return Layout(i18n.T(ctx, "login.title"), nil, body)
}
