package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dineflow/table-reservation/internal/model"
)

// walkInKey builds the walk-in partition key: entries only share a queue
// when guest count, hall, segment and date all match.
func walkInKey(date string, guests int, hall, segment string) string {
	return fmt.Sprintf("%s|%d|%s|%s", date, guests, hall, segment)
}

// WalkInRequest describes a guest joining the walk-in queue.  Hall and
// segment preferences accept model.AnyPreference.
type WalkInRequest struct {
	CustomerName       string `json:"customer_name"`
	GuestCount         int    `json:"guest_count"`
	NotificationMethod string `json:"notification_method"`
	Contact            string `json:"contact"`
	HallPreference     string `json:"hall_preference"`
	SegmentPreference  string `json:"segment_preference"`
	QueueDate          string `json:"queue_date"`
}

func (r WalkInRequest) validate(e *Engine) error {
	if err := validateDate(r.QueueDate, e.clock.Now()); err != nil {
		return err
	}
	if err := validateGuests(r.GuestCount); err != nil {
		return err
	}
	if err := validateRequired("customer_name", r.CustomerName); err != nil {
		return err
	}
	if err := validateRequired("contact", r.Contact); err != nil {
		return err
	}
	return validateNotificationMethod(r.NotificationMethod)
}

// JoinWalkInQueue appends the guest to their partition.  The assigned
// position is the count of active entries plus one and the initial wait
// is position * SlotDurationMinutes: the estimate assumes one table
// turns over per slot duration, a documented policy choice.
func (e *Engine) JoinWalkInQueue(req WalkInRequest) (model.WalkInQueueEntry, error) {
	if err := req.validate(e); err != nil {
		return model.WalkInQueueEntry{}, err
	}
	hall := req.HallPreference
	if hall == "" {
		hall = model.AnyPreference
	}
	segment := req.SegmentPreference
	if segment == "" {
		segment = model.AnyPreference
	}
	entry := model.WalkInQueueEntry{
		ID:                 uuid.NewString(),
		CustomerName:       req.CustomerName,
		GuestCount:         req.GuestCount,
		NotificationMethod: req.NotificationMethod,
		Contact:            req.Contact,
		HallPreference:     hall,
		SegmentPreference:  segment,
		JoinedAt:           e.clock.Now(),
		QueueDate:          req.QueueDate,
	}
	key := walkInKey(entry.QueueDate, entry.GuestCount, hall, segment)
	out := e.walkin.join(key, entry.ID, entry)

	e.persist("walkin join", func(ctx context.Context) error {
		return e.store.SaveWalkInEntries(ctx, []model.WalkInQueueEntry{out})
	})
	return out, nil
}

// CancelWalkInEntry removes the entry and renumbers the survivors of its
// partition by join order.  Idempotent: cancelling an unknown or
// already-removed entry is a successful no-op.
func (e *Engine) CancelWalkInEntry(id string) {
	if !e.walkin.cancel(id) {
		return
	}
	e.persist("walkin cancel", func(ctx context.Context) error {
		return e.store.DeleteWalkInEntry(ctx, id)
	})
}

// SetWalkInNotified forces the almost-ready latch true.  Used by the
// transport layer when a notification was triggered out of band; the
// latch is monotonic so repeating the call changes nothing.
func (e *Engine) SetWalkInNotified(id string) {
	entry, ok := e.walkin.setNotified(id)
	if !ok {
		return
	}
	e.persist("walkin notified flag", func(ctx context.Context) error {
		return e.store.SaveWalkInEntries(ctx, []model.WalkInQueueEntry{entry})
	})
}

// ListWalkInPartition returns the partition's active entries in position
// order together with the partition version.  The version increments on
// every mutation, so pollers can skip unchanged partitions.
func (e *Engine) ListWalkInPartition(date string, guests int, hall, segment string) ([]model.WalkInQueueEntry, uint64) {
	if hall == "" {
		hall = model.AnyPreference
	}
	if segment == "" {
		segment = model.AnyPreference
	}
	return e.walkin.list(walkInKey(date, guests, hall, segment))
}

// ListWalkInDay returns every entry queued for the given date across all
// partitions, ordered hall, then segment, then position, matching the
// staff dashboard's whole-day view.
func (e *Engine) ListWalkInDay(date string) []model.WalkInQueueEntry {
	entries := e.walkin.collect(func(key string) bool {
		return strings.HasPrefix(key, date+"|")
	})
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.HallPreference != b.HallPreference {
			return a.HallPreference < b.HallPreference
		}
		if a.SegmentPreference != b.SegmentPreference {
			return a.SegmentPreference < b.SegmentPreference
		}
		return a.Position < b.Position
	})
	return entries
}

// RestoreWalkInEntry re-inserts a persisted entry at startup.  Callers
// must feed entries in ascending JoinedAt order per partition.
func (e *Engine) RestoreWalkInEntry(entry model.WalkInQueueEntry) {
	key := walkInKey(entry.QueueDate, entry.GuestCount, entry.HallPreference, entry.SegmentPreference)
	e.walkin.restore(key, entry.ID, entry.JoinedAt, entry.NotifiedAlmostReady, entry)
}
