package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dineflow/table-reservation/internal/engine"
	"github.com/dineflow/table-reservation/internal/model"
)

// AvailabilityHandler serves the read-only inventory and availability
// queries.  Both endpoints sit behind the response cache middleware.
type AvailabilityHandler struct {
	Engine *engine.Engine
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(e *engine.Engine) *AvailabilityHandler {
	if e == nil {
		panic("nil engine passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Engine: e}
}

// Tables handles GET /v1/tables: the full inventory in ascending id
// order, plus the enumerated time slots for building booking forms.
func (h *AvailabilityHandler) Tables(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"tables":     h.Engine.Tables(),
		"time_slots": model.TimeSlots,
	})
}

// Check handles GET /v1/availability.  Query parameters: date,
// time_slot, guests, and optional location/segment preferences.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	guests, err := strconv.Atoi(c.QueryParam("guests"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests must be an integer"})
	}
	report, err := h.Engine.CheckAvailability(engine.AvailabilityQuery{
		Date:       c.QueryParam("date"),
		TimeSlot:   c.QueryParam("time_slot"),
		GuestCount: guests,
		Location:   c.QueryParam("location"),
		Segment:    c.QueryParam("segment"),
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
	}
	return c.JSON(http.StatusOK, report)
}
