package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit limits the maximum request body size. defaultLimit applies to
// most endpoints while importLimit applies to the BG file import routes,
// which carry whole journal batches.
//
// Limits are human-readable strings: "1M", "10M", "512K". A bare number is
// bytes.
func BodyLimit(defaultLimit, importLimit string) echo.MiddlewareFunc {
	defaultBytes := parseLimit(defaultLimit)
	importBytes := parseLimit(importLimit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Body == nil || c.Request().Body == http.NoBody {
				return next(c)
			}

			limit := defaultBytes
			if strings.HasSuffix(c.Request().URL.Path, "/load-from-bg") {
				limit = importBytes
			}

			if c.Request().ContentLength > limit {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}

			// Enforce the limit even when Content-Length is absent or lies.
			c.Request().Body = &limitedReadCloser{ReadCloser: c.Request().Body, remaining: limit}
			return next(c)
		}
	}
}

type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	n, err := r.ReadCloser.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		r.exceeded = true
		return n, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return n, err
}

func parseLimit(limit string) int64 {
	limit = strings.TrimSpace(strings.ToUpper(limit))
	if limit == "" {
		return 1 << 20
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(limit, "G"):
		multiplier = 1 << 30
		limit = strings.TrimSuffix(limit, "G")
	case strings.HasSuffix(limit, "M"):
		multiplier = 1 << 20
		limit = strings.TrimSuffix(limit, "M")
	case strings.HasSuffix(limit, "K"):
		multiplier = 1 << 10
		limit = strings.TrimSuffix(limit, "K")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(limit), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n * multiplier
}
