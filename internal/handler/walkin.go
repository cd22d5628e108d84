package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dineflow/table-reservation/internal/engine"
)

// WalkInHandler exposes the walk-in waiting queue: join, leave, the
// notification latch and the partition/day listings the dashboard polls.
type WalkInHandler struct {
	Engine *engine.Engine
}

// NewWalkInHandler constructs a WalkInHandler.
func NewWalkInHandler(e *engine.Engine) *WalkInHandler {
	if e == nil {
		panic("nil engine passed to NewWalkInHandler")
	}
	return &WalkInHandler{Engine: e}
}

// Join handles POST /v1/queue/join.
func (h *WalkInHandler) Join(c echo.Context) error {
	var req engine.WalkInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	entry, err := h.Engine.JoinWalkInQueue(req)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}
	return c.JSON(http.StatusCreated, entry)
}

// Cancel handles DELETE /v1/queue/:id.  Idempotent by contract:
// removing an entry that is already gone still acknowledges.
func (h *WalkInHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	h.Engine.CancelWalkInEntry(id)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// SetNotified handles PATCH /v1/queue/:id/notified.  The latch is
// monotonic, so repeating the call is harmless.
func (h *WalkInHandler) SetNotified(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	h.Engine.SetWalkInNotified(id)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// List handles GET /v1/queue.  With guests/hall/segment present it
// returns one partition plus its version counter so clients can poll
// cheaply; with only a date it returns the whole-day view ordered by
// hall, segment and position.
func (h *WalkInHandler) List(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	guestsParam := c.QueryParam("guests")
	if guestsParam == "" {
		return c.JSON(http.StatusOK, echo.Map{"entries": h.Engine.ListWalkInDay(date)})
	}
	guests, err := strconv.Atoi(guestsParam)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests must be an integer"})
	}
	entries, version := h.Engine.ListWalkInPartition(date, guests, c.QueryParam("hall"), c.QueryParam("segment"))
	return c.JSON(http.StatusOK, echo.Map{"entries": entries, "version": version})
}
