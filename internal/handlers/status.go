package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type StatusHandler struct {
	DB          *gorm.DB
	Name        string
	Version     string
	Environment string

	startedAt time.Time
}

func NewStatusHandler(db *gorm.DB, name, version, environment string) *StatusHandler {
	return &StatusHandler{
		DB:          db,
		Name:        name,
		Version:     version,
		Environment: environment,
		startedAt:   time.Now().UTC(),
	}
}

func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *StatusHandler) DBHealth(c echo.Context) error {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"database": "unreachable", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"database": "ok"})
}

func (h *StatusHandler) Meta(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name":        h.Name,
		"version":     h.Version,
		"environment": h.Environment,
		"started_at":  h.startedAt.Format(time.RFC3339),
		"runtime": echo.Map{
			"go_version": runtime.Version(),
			"system":     runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
		"deployment": echo.Map{
			"build_hash": envOr("BUILD_HASH", "unknown"),
			"build_time": envOr("BUILD_TIME", "unknown"),
		},
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
