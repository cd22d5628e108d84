package model

import "time"

// Reservation status values.  A reservation is created Confirmed when a
// table could be allocated; Cancelled records no longer count toward the
// allocation invariant but are retained for the caller's history.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a booking of one table for one (date, timeSlot).
// At most one non-cancelled reservation may hold a given table for the
// same date and slot.
//
// Fields:
//  ID              – unique reservation identifier (UUID).
//  UserID          – identity of the booking user ("guest" when anonymous).
//  TableID         – allocated table; zero until allocation succeeds.
//  Date            – service date in YYYY-MM-DD form.
//  TimeSlot        – one of the enumerated TimeSlots.
//  GuestCount      – party size; >= 1.
//  Location        – hall preference recorded on the request.
//  Segment         – segment preference recorded on the request.
//  CustomerName    – name given at booking time.
//  CustomerContact – phone or e-mail for the booking.
//  Status          – PENDING, CONFIRMED or CANCELLED.
//  CreatedAt       – UTC creation timestamp.
type Reservation struct {
	ID              string    `json:"reservation_id"`
	UserID          string    `json:"user_id"`
	TableID         uint64    `json:"table_id"`
	Date            string    `json:"date"`
	TimeSlot        string    `json:"time_slot"`
	GuestCount      int       `json:"guest_count"`
	Location        string    `json:"location"`
	Segment         string    `json:"segment"`
	CustomerName    string    `json:"customer_name"`
	CustomerContact string    `json:"customer_contact"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
