package middleware

import (
	"net/http"
	"strings"

	"law_office_desk/models"
	"law_office_desk/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "law_office_session"
	// ContextKeyIdentity is the context key for the authenticated identity
	ContextKeyIdentity = "identity"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
	// ContextKeyConfig is the context key for the application config
	ContextKeyConfig = "config"
)

// RequireAuth is middleware that requires a valid session.
func RequireAuth(database *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return redirectToLogin(c)
			}

			session, err := services.ValidateSession(database, cookie.Value)
			if err != nil {
				ClearSessionCookie(c)
				return redirectToLogin(c)
			}

			identity := session.Identity()
			c.Set(ContextKeyIdentity, &identity)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// redirectToLogin sends browsers to the login page and API clients a 401.
func redirectToLogin(c echo.Context) error {
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusUnauthorized)
	}
	if wantsJSON(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// RequireRole is middleware that requires one of the given roles
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := GetCurrentIdentity(c)
			if identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			for _, role := range roles {
				if identity.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetCurrentIdentity retrieves the authenticated identity from context
func GetCurrentIdentity(c echo.Context) *models.Identity {
	identity, ok := c.Get(ContextKeyIdentity).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetCurrentSession retrieves the session from context
func GetCurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionCookie stores the session token in the browser.
func SetSessionCookie(c echo.Context, session *models.Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}
