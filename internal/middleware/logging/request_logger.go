package logging

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tbuchert/accounting-api/internal/logging"
)

// RequestLogger builds a per-request logger carrying the request id and route,
// stores it in the request context for handlers and services, and emits one
// completion line per request. Must run after the RequestID middleware so a
// generated id is already on the response.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := base.With(
				"request_id", requestID(c),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"remote_ip", c.RealIP(),
			)

			c.SetRequest(c.Request().WithContext(
				logging.IntoContext(c.Request().Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			status := c.Response().Status
			attrs := []any{
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
			}
			switch {
			case err != nil || status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("request", attrs...)
			case status >= 400:
				l.Warn("request", attrs...)
			default:
				l.Info("request", attrs...)
			}
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
