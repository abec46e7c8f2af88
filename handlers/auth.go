package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"law_office_desk/middleware"
	"law_office_desk/services"
	"law_office_desk/services/i18n"
	"law_office_desk/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// LoginPage renders the login form
func (h *Handler) LoginPage(c echo.Context) error {
	ctx := c.Request().Context()
	return render(c, http.StatusOK, pages.Login(ctx, "", ""))
}

// Login checks the submitted credentials against the employee roster
func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	identity, ok := h.Access.Authenticate(ctx, username, password)
	if username == "" || password == "" || !ok {
		if username != "" && h.Monitor != nil {
			h.Monitor.TrackFailedLogin(c.RealIP(), username)
		}
		message := i18n.T(ctx, "login.invalid")
		if isHTMX(c) {
			return c.HTML(http.StatusOK, fmt.Sprintf(`<div class="alert alert-error" role="alert">%s</div>`, templ.EscapeString(message)))
		}
		return render(c, http.StatusUnauthorized, pages.Login(ctx, username, message))
	}

	session, err := services.CreateSession(h.DB, *identity, h.Config.SessionTTL, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to create session")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}
	middleware.SetSessionCookie(c, session, h.Config.IsProduction())

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/dashboard")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout ends the current session
func (h *Handler) Logout(c echo.Context) error {
	if session := middleware.GetCurrentSession(c); session != nil {
		if err := services.DeleteSession(h.DB, session.Token); err != nil {
			log.Error().Err(err).Msg("Failed to delete session")
		}
		services.LogSecurityEvent("logout", session.Username, "User logged out")
	}
	middleware.ClearSessionCookie(c)

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// SecurityAlerts lists the failed-login alerts raised since startup, newest first.
func (h *Handler) SecurityAlerts(c echo.Context) error {
	alerts := []services.SecurityAlert{}
	if h.Monitor != nil {
		alerts = h.Monitor.RecentAlerts()
	}
	return c.JSON(http.StatusOK, listResponse{Records: alerts})
}
