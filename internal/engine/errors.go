// Package engine implements the allocation and queueing core of the
// reservation service: table allocation for time-slotted bookings, the
// walk-in waiting queue, the slot waiting queue and the almost-ready
// notification trigger.  The engine owns the authoritative state in
// process memory behind per-partition locks; persistence and message
// delivery are downstream collaborators that never block an operation.
package engine

import "errors"

// ErrNoTableAvailable is returned by Book when no free matching table
// exists for the requested date and time slot.  It is not fatal; callers
// offer the slot waiting queue instead.
var ErrNoTableAvailable = errors.New("no table available")

// ErrNotFound is returned when an operation references an unknown
// reservation.  Cancelling an already-cancelled reservation is NOT an
// error; only unknown identifiers surface ErrNotFound.
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest wraps validation failures: malformed guest counts,
// unknown time slots, past or unparseable dates.  Validation happens
// before any state mutation, so a rejected request leaves no partial
// record behind.
var ErrInvalidRequest = errors.New("invalid request")
