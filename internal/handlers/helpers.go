package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tbuchert/accounting-api/internal/logging"
	authsvc "github.com/tbuchert/accounting-api/internal/service/auth"
)

// EventProducer is satisfied by events.Producer; handlers publish through it
// and only log failures.
type EventProducer interface {
	PublishEvent(ctx context.Context, eventType, key string, payload map[string]any) error
}

func httpError(err error) error {
	switch {
	case errors.Is(err, authsvc.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	case errors.Is(err, authsvc.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, authsvc.ErrMalformedToken):
		return echo.NewHTTPError(http.StatusBadRequest, "malformed token")
	case errors.Is(err, authsvc.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func publishEvent(c echo.Context, p EventProducer, eventType, key string, payload map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, eventType, key, payload); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "type", eventType, "error", err)
	}
}
