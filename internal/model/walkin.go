package model

import "time"

// WalkInQueueEntry is one guest waiting for a table without a prior
// reservation.  Entries are ordered within their partition by join time;
// the partition key is (GuestCount, HallPreference, SegmentPreference,
// QueueDate).
//
// Fields:
//  ID                   – unique entry identifier (UUID).
//  CustomerName         – guest's name.
//  GuestCount           – party size; >= 1.
//  NotificationMethod   – "sms" or "email"; how the guest asked to be told.
//  Contact              – phone number or e-mail address.
//  HallPreference       – requested hall, or AnyPreference.
//  SegmentPreference    – requested segment, or AnyPreference.
//  Position             – 1-based position within the partition.
//  EstimatedWaitMinutes – derived countdown, clamped at zero.
//  JoinedAt             – UTC timestamp when the guest joined.
//  QueueDate            – service date the queue belongs to (YYYY-MM-DD).
//  NotifiedAlmostReady  – one-shot latch; flips false→true at most once.
type WalkInQueueEntry struct {
	ID                   string    `json:"entry_id"`
	CustomerName         string    `json:"customer_name"`
	GuestCount           int       `json:"guest_count"`
	NotificationMethod   string    `json:"notification_method"`
	Contact              string    `json:"contact"`
	HallPreference       string    `json:"hall_preference"`
	SegmentPreference    string    `json:"segment_preference"`
	Position             int       `json:"position"`
	EstimatedWaitMinutes float64   `json:"estimated_wait_minutes"`
	JoinedAt             time.Time `json:"joined_at"`
	QueueDate            string    `json:"queue_date"`
	NotifiedAlmostReady  bool      `json:"notified_almost_ready"`
}

// SlotQueueEntry is one guest waiting on a fully booked (date, timeSlot)
// combination.  It shares the walk-in queue's positional algorithm but is
// partitioned by (Date, TimeSlot) and exposes a coarse textual wait band
// instead of an exact minute figure.
//
// Fields mirror the persisted slot_waiting_queue row.
type SlotQueueEntry struct {
	ID                  string    `json:"queue_id"`
	UserID              string    `json:"user_id"`
	Date                string    `json:"date"`
	TimeSlot            string    `json:"time_slot"`
	GuestCount          int       `json:"guest_count"`
	Position            int       `json:"position"`
	EstimatedWaitRange  string    `json:"estimated_wait_range"`
	JoinedAt            time.Time `json:"joined_at"`
	NotifiedAlmostReady bool      `json:"notified_almost_ready"`
}
