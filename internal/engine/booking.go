package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/dineflow/table-reservation/internal/model"
)

// BookingRequest carries everything needed to allocate a table for a
// (date, timeSlot).  Location and Segment may be model.AnyPreference.
type BookingRequest struct {
	UserID          string `json:"user_id"`
	Date            string `json:"date"`
	TimeSlot        string `json:"time_slot"`
	GuestCount      int    `json:"guest_count"`
	Location        string `json:"location"`
	Segment         string `json:"segment"`
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
}

func (r BookingRequest) validate(e *Engine) error {
	if err := validateDate(r.Date, e.clock.Now()); err != nil {
		return err
	}
	if err := validateTimeSlot(r.TimeSlot); err != nil {
		return err
	}
	if err := validateGuests(r.GuestCount); err != nil {
		return err
	}
	if err := validateRequired("customer_name", r.CustomerName); err != nil {
		return err
	}
	return validateRequired("customer_contact", r.CustomerContact)
}

// BookReservation allocates a table and returns the confirmed
// reservation.  ErrNoTableAvailable signals the caller to offer the slot
// waiting queue; ErrInvalidRequest rejects before any state changes.
func (e *Engine) BookReservation(req BookingRequest) (model.Reservation, error) {
	if err := req.validate(e); err != nil {
		return model.Reservation{}, err
	}
	userID := req.UserID
	if userID == "" {
		userID = "guest"
	}
	res := &model.Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		Date:            req.Date,
		TimeSlot:        req.TimeSlot,
		GuestCount:      req.GuestCount,
		Location:        req.Location,
		Segment:         req.Segment,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
	}
	if err := e.alloc.book(res, e.clock.Now()); err != nil {
		return model.Reservation{}, err
	}

	snapshot := *res
	e.persist("reservation create", func(ctx context.Context) error {
		return e.store.SaveReservation(ctx, snapshot)
	})
	if e.events != nil {
		go e.events.ReservationConfirmed(snapshot)
	}
	return snapshot, nil
}

// CancelReservation frees the reservation's table for its (date,
// timeSlot).  Unknown ids return ErrNotFound; repeating a cancellation
// succeeds without effect.
func (e *Engine) CancelReservation(id string) error {
	res, err := e.alloc.cancel(id)
	if err != nil {
		return err
	}
	e.persist("reservation cancel", func(ctx context.Context) error {
		return e.store.SaveReservation(ctx, res)
	})
	return nil
}

// GetReservation returns a snapshot of one reservation.
func (e *Engine) GetReservation(id string) (model.Reservation, error) {
	return e.alloc.get(id)
}

// RestoreReservation re-registers a persisted reservation at startup.
func (e *Engine) RestoreReservation(res model.Reservation) {
	e.alloc.restore(res)
}

// AvailabilityQuery filters the inventory for an availability report.
type AvailabilityQuery struct {
	Date       string
	TimeSlot   string
	GuestCount int
	Location   string
	Segment    string
}

// AvailabilityReport lists each matching table with its availability for
// the queried slot.  AllBooked is true when tables match the request but
// none is free, which is the cue to offer the slot waiting queue.
type AvailabilityReport struct {
	Tables    []TableAvailability `json:"tables"`
	AllBooked bool                `json:"all_booked"`
}

// CheckAvailability is a read-only query over the inventory and the
// active reservations for one (date, timeSlot).
func (e *Engine) CheckAvailability(q AvailabilityQuery) (AvailabilityReport, error) {
	if err := validateDate(q.Date, e.clock.Now()); err != nil {
		return AvailabilityReport{}, err
	}
	if err := validateTimeSlot(q.TimeSlot); err != nil {
		return AvailabilityReport{}, err
	}
	if err := validateGuests(q.GuestCount); err != nil {
		return AvailabilityReport{}, err
	}
	rows, allBooked := e.alloc.availability(q.Date, q.TimeSlot, q.GuestCount, q.Location, q.Segment)
	return AvailabilityReport{Tables: rows, AllBooked: allBooked}, nil
}
