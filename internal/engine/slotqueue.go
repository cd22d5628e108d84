package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dineflow/table-reservation/internal/model"
)

// waitRangeForPosition maps a position to the coarse textual band shown
// to guests waiting on a fully booked slot.  One slot duration per
// position, same turnover assumption as the walk-in estimate.
func waitRangeForPosition(position int) string {
	low := (position - 1) * model.SlotDurationMinutes
	high := position * model.SlotDurationMinutes
	return fmt.Sprintf("%d-%d minutes", low, high)
}

// SlotQueueRequest describes a guest joining the waiting queue for a
// fully booked (date, timeSlot).
type SlotQueueRequest struct {
	UserID     string `json:"user_id"`
	Date       string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	GuestCount int    `json:"guest_count"`
}

func (r SlotQueueRequest) validate(e *Engine) error {
	if err := validateDate(r.Date, e.clock.Now()); err != nil {
		return err
	}
	if err := validateTimeSlot(r.TimeSlot); err != nil {
		return err
	}
	return validateGuests(r.GuestCount)
}

// JoinSlotQueue appends the guest to the (date, timeSlot) waiting queue.
// The same positional algorithm as the walk-in queue assigns the
// position; only the exposed wait representation differs.
func (e *Engine) JoinSlotQueue(req SlotQueueRequest) (model.SlotQueueEntry, error) {
	if err := req.validate(e); err != nil {
		return model.SlotQueueEntry{}, err
	}
	userID := req.UserID
	if userID == "" {
		userID = "guest"
	}
	entry := model.SlotQueueEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
		GuestCount: req.GuestCount,
		JoinedAt:   e.clock.Now(),
	}
	out := e.slots.join(slotKey(entry.Date, entry.TimeSlot), entry.ID, entry)

	e.persist("slot-queue join", func(ctx context.Context) error {
		return e.store.SaveSlotQueueEntries(ctx, []model.SlotQueueEntry{out})
	})
	return out, nil
}

// LeaveSlotQueue removes the entry and renumbers the rest of its
// partition.  Idempotent like the walk-in cancel.
func (e *Engine) LeaveSlotQueue(id string) {
	if !e.slots.cancel(id) {
		return
	}
	e.persist("slot-queue leave", func(ctx context.Context) error {
		return e.store.DeleteSlotQueueEntry(ctx, id)
	})
}

// ListSlotQueue returns the waiting queue for one (date, timeSlot) in
// position order, with the partition version for cheap change polling.
func (e *Engine) ListSlotQueue(date, timeSlot string) ([]model.SlotQueueEntry, uint64) {
	return e.slots.list(slotKey(date, timeSlot))
}

// RestoreSlotQueueEntry re-inserts a persisted entry at startup, in
// ascending JoinedAt order per partition.
func (e *Engine) RestoreSlotQueueEntry(entry model.SlotQueueEntry) {
	e.slots.restore(slotKey(entry.Date, entry.TimeSlot), entry.ID, entry.JoinedAt, entry.NotifiedAlmostReady, entry)
}
