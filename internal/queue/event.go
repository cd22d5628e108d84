// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// Queue names used on the broker.  Durable; declared idempotently by
// both publisher and consumer.
const (
	AlmostReadyQueue          = "queue.almost_ready"
	ReservationConfirmedQueue = "reservation.confirmed"
)

// AlmostReadyEvent is published when a waiting guest's estimated wait
// first enters the almost-ready band, for the walk-in queue and the
// slot waiting queue alike.  It carries the contact details so a
// downstream notifier can reach the guest without querying the primary
// database.  Source is "walkin" or "slot".
type AlmostReadyEvent struct {
	Source             string  `json:"source"`
	EntryID            string  `json:"entry_id"`
	CustomerName       string  `json:"customer_name,omitempty"`
	UserID             string  `json:"user_id,omitempty"`
	GuestCount         int     `json:"guest_count"`
	NotificationMethod string  `json:"notification_method,omitempty"`
	Contact            string  `json:"contact,omitempty"`
	Position           int     `json:"position"`
	WaitMinutes        float64 `json:"wait_minutes,omitempty"`
	WaitRange          string  `json:"wait_range,omitempty"`
	QueueDate          string  `json:"queue_date"`
	TimeSlot           string  `json:"time_slot,omitempty"`
	TriggeredAt        string  `json:"triggered_at"`
}

// ReservationConfirmedEvent is published when a table is allocated.
// Downstream consumers log or notify without touching the database.
type ReservationConfirmedEvent struct {
	ReservationID   string `json:"reservation_id"`
	UserID          string `json:"user_id"`
	TableID         uint64 `json:"table_id"`
	Date            string `json:"date"`
	TimeSlot        string `json:"time_slot"`
	GuestCount      int    `json:"guest_count"`
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	ConfirmedAt     string `json:"confirmed_at"`
}
