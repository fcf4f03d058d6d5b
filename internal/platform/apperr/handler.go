package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// body is the JSON error envelope returned to clients.
type body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HTTPErrorHandler returns an echo error handler that translates application
// errors into HTTP responses. Unknown errors are logged and returned as 500
// without leaking internals.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error().Err(appErr).Str("path", c.Request().URL.Path).Msg("request failed")
			}
			_ = c.JSON(appErr.HTTPStatus, body{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(httpErr.Code)
			}
			_ = c.JSON(httpErr.Code, body{Code: http.StatusText(httpErr.Code), Message: msg})
			return
		}

		logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, body{
			Code:    CodeInternal,
			Message: "internal server error",
		})
	}
}
