package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"parcelbook/internal/service"
)

// AdminHandler handles dashboard reporting endpoints.
type AdminHandler struct {
	statsService service.StatsService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(statsService service.StatsService) *AdminHandler {
	return &AdminHandler{statsService: statsService}
}

// Statistics godoc
// @Summary Parcel and user totals
// @Tags admin
// @Produce json
// @Success 200 {object} service.Statistics
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin-statistics [get]
func (h *AdminHandler) Statistics(c echo.Context) error {
	stats, err := h.statsService.Counts(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// BookedByDate godoc
// @Summary Bookings per day
// @Description Days are dd-mm-yyyy in UTC, sorted ascending as strings. Unreadable dates count under "unknown".
// @Tags admin
// @Produce json
// @Success 200 {array} model.DailyBookingCount
// @Failure 500 {object} errors.ErrorResponse
// @Router /booked-by-date [get]
func (h *AdminHandler) BookedByDate(c echo.Context) error {
	counts, err := h.statsService.BookedByDate(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, counts)
}
