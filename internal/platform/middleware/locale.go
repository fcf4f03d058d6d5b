package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/medreg/registry/internal/platform/i18n"
)

const localeKey = "locale"

// Locale negotiates the response language from the Accept-Language header and
// stores it on the echo context. Handlers read it once and pass it to
// services explicitly; nothing downstream inspects the header again.
func Locale(resolver *i18n.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			locale := resolver.Negotiate(c.Request().Header.Get("Accept-Language"))
			c.Set(localeKey, locale)
			c.Response().Header().Set("Content-Language", locale)
			return next(c)
		}
	}
}

// LocaleFromEcho returns the negotiated locale for the request, or empty when
// the Locale middleware is not installed.
func LocaleFromEcho(c echo.Context) string {
	locale, _ := c.Get(localeKey).(string)
	return locale
}
