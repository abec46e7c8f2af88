package middleware

import (
	"net/http"
	"strings"
	"time"

	"law_office_desk/config"
	"law_office_desk/services/i18n"

	"github.com/labstack/echo/v4"
)

// LocaleCookieName stores the user's language choice.
const LocaleCookieName = "lang"

// Config makes the application config available to handlers.
func Config(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			return next(c)
		}
	}
}

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Default language
func Locale() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.Supported(lang) {
					lang = i18n.Default()
				}
				SetLanguageCookie(c, lang)
			} else if cookie, err := c.Cookie(LocaleCookieName); err == nil && i18n.Supported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

// fromAcceptLanguage picks the first supported language in the header.
func fromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch {
		case strings.EqualFold(tag, i18n.PortugueseBR), strings.HasPrefix(strings.ToLower(tag), "pt"):
			return i18n.PortugueseBR
		case strings.HasPrefix(strings.ToLower(tag), "en"):
			return i18n.English
		}
	}
	return i18n.Default()
}

// SetLanguageCookie sets the language cookie
func SetLanguageCookie(c echo.Context, lang string) {
	c.SetCookie(&http.Cookie{
		Name:     LocaleCookieName,
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isProduction(c),
	})
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return i18n.Default()
}

// GetConfig returns the config stored by the Config middleware.
func GetConfig(c echo.Context) *config.Config {
	cfg, _ := c.Get(ContextKeyConfig).(*config.Config)
	return cfg
}

func isProduction(c echo.Context) bool {
	cfg := GetConfig(c)
	return cfg != nil && cfg.IsProduction()
}
