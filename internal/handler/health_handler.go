package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"parcelbook/internal/cache"
	"parcelbook/internal/db"
)

// HealthHandler reports liveness and store readiness.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gormDB *gorm.DB, cache *cache.Client) *HealthHandler {
	return &HealthHandler{db: gormDB, cache: cache}
}

// Root is the static liveness string.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "Parcel booking service is running")
}

// Healthz godoc
// @Summary Readiness probe
// @Description Fails when the store does not answer. Redis being down only degrades caching.
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {string} string "unavailable"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx := c.Request().Context()
	if err := db.Ping(ctx, h.db); err != nil {
		slog.ErrorContext(ctx, "store ping failed", "error", err)
		return c.String(http.StatusServiceUnavailable, "unavailable")
	}
	if err := h.cache.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "redis ping failed, caching disabled", "error", err)
	}
	return c.String(http.StatusOK, "ok")
}
