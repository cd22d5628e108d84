package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dineflow/table-reservation/internal/engine"
)

// ReservationHandler exposes table booking and cancellation over HTTP.
// All allocation decisions happen inside the engine; the handler only
// binds requests and maps engine errors to status codes.
type ReservationHandler struct {
	Engine *engine.Engine
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(e *engine.Engine) *ReservationHandler {
	if e == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: e}
}

// Book handles POST /v1/reservations.  A 409 with no_table_available
// tells the client every matching table is taken for that slot and the
// slot waiting queue is the fallback.
func (h *ReservationHandler) Book(c echo.Context) error {
	var req engine.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.UserID = currentUser(c)

	res, err := h.Engine.BookReservation(req)
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNoTableAvailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":         "no_table_available",
			"waiting_queue": true,
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles DELETE /v1/reservations/:id.  Cancelling twice is
// fine; only an unknown id is a 404.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Engine.CancelReservation(id); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.Engine.GetReservation(c.Param("id"))
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// currentUser reads the identity stamped by the JWT middleware, falling
// back to "guest" for anonymous callers.
func currentUser(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
