package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dineflow/table-reservation/internal/engine"
)

// SlotQueueHandler exposes the waiting queue for fully booked
// (date, time slot) combinations.
type SlotQueueHandler struct {
	Engine *engine.Engine
}

// NewSlotQueueHandler constructs a SlotQueueHandler.
func NewSlotQueueHandler(e *engine.Engine) *SlotQueueHandler {
	if e == nil {
		panic("nil engine passed to NewSlotQueueHandler")
	}
	return &SlotQueueHandler{Engine: e}
}

// Join handles POST /v1/slot-queue/join.
func (h *SlotQueueHandler) Join(c echo.Context) error {
	var req engine.SlotQueueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.UserID = currentUser(c)
	entry, err := h.Engine.JoinSlotQueue(req)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}
	return c.JSON(http.StatusCreated, entry)
}

// Leave handles DELETE /v1/slot-queue/:id.  Idempotent Ack.
func (h *SlotQueueHandler) Leave(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid queue id"})
	}
	h.Engine.LeaveSlotQueue(id)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// List handles GET /v1/slot-queue with date and time_slot parameters.
func (h *SlotQueueHandler) List(c echo.Context) error {
	date := c.QueryParam("date")
	slot := c.QueryParam("time_slot")
	if date == "" || slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time_slot are required"})
	}
	entries, version := h.Engine.ListSlotQueue(date, slot)
	return c.JSON(http.StatusOK, echo.Map{"entries": entries, "version": version})
}
