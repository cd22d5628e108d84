package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineflow/table-reservation/internal/model"
)

// fakeClock is a manually advanced Clock so wait math runs on simulated
// time instead of sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSink counts events so tests can assert exactly-once delivery.
type recordingSink struct {
	mu          sync.Mutex
	confirmed   []model.Reservation
	almostReady []model.WalkInQueueEntry
	slotAlmost  []model.SlotQueueEntry
}

func (s *recordingSink) ReservationConfirmed(r model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = append(s.confirmed, r)
}

func (s *recordingSink) AlmostReady(e model.WalkInQueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.almostReady = append(s.almostReady, e)
}

func (s *recordingSink) SlotAlmostReady(e model.SlotQueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotAlmost = append(s.slotAlmost, e)
}

func (s *recordingSink) almostReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.almostReady)
}

var testStart = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

const testDate = "2026-09-05"

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *recordingSink) {
	t.Helper()
	clock := newFakeClock(testStart)
	sink := &recordingSink{}
	return New(model.DefaultTables, clock, nil, sink, nil), clock, sink
}

func bookingReq(guests int, location, segment string) BookingRequest {
	return BookingRequest{
		Date:            testDate,
		TimeSlot:        "19:00-20:00",
		GuestCount:      guests,
		Location:        location,
		Segment:         segment,
		CustomerName:    "Dana",
		CustomerContact: "dana@example.com",
	}
}

func TestBookFillsPoolThenRejects(t *testing.T) {
	e, _, _ := newTestEngine(t)

	seen := make(map[uint64]bool)
	for i := 0; i < 12; i++ {
		res, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
		require.NoError(t, err, "booking %d", i+1)
		assert.Equal(t, model.ReservationConfirmed, res.Status)
		assert.False(t, seen[res.TableID], "table %d allocated twice", res.TableID)
		seen[res.TableID] = true
	}
	require.Len(t, seen, 12)

	_, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
	require.ErrorIs(t, err, ErrNoTableAvailable)
}

func TestBookPicksLowestMatchingTableID(t *testing.T) {
	e, _, _ := newTestEngine(t)

	res, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.TableID)

	res, err = e.BookReservation(bookingReq(2, "Outdoor", model.AnyPreference))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), res.TableID)

	// Capacity filter skips two-seaters for a party of five.
	res, err = e.BookReservation(bookingReq(5, model.AnyPreference, model.AnyPreference))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.TableID)
}

func TestSameSlotNeverDoubleBooks(t *testing.T) {
	e, _, _ := newTestEngine(t)

	var wg sync.WaitGroup
	results := make(chan uint64, 24)
	failures := make(chan error, 24)
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
			if err != nil {
				failures <- err
				return
			}
			results <- res.TableID
		}()
	}
	wg.Wait()
	close(results)
	close(failures)

	seen := make(map[uint64]bool)
	for id := range results {
		assert.False(t, seen[id], "table %d double booked", id)
		seen[id] = true
	}
	assert.Len(t, seen, 12)
	for err := range failures {
		assert.ErrorIs(t, err, ErrNoTableAvailable)
	}
}

func TestDisjointSlotsAllocateIndependently(t *testing.T) {
	e, _, _ := newTestEngine(t)

	first, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
	require.NoError(t, err)

	other := bookingReq(2, model.AnyPreference, model.AnyPreference)
	other.TimeSlot = "20:00-21:00"
	second, err := e.BookReservation(other)
	require.NoError(t, err)

	// The same physical table serves both slots.
	assert.Equal(t, first.TableID, second.TableID)
}

func TestCancelFreesTableForSlot(t *testing.T) {
	e, _, _ := newTestEngine(t)

	res, err := e.BookReservation(bookingReq(5, "Family Hall", "Center"))
	require.NoError(t, err)
	require.Equal(t, uint64(7), res.TableID)

	report, err := e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 5,
		Location: "Family Hall", Segment: "Center",
	})
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.False(t, report.Tables[0].Available)
	assert.True(t, report.AllBooked)

	require.NoError(t, e.CancelReservation(res.ID))

	report, err = e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 5,
		Location: "Family Hall", Segment: "Center",
	})
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, uint64(7), report.Tables[0].Table.ID)
	assert.True(t, report.Tables[0].Available)
	assert.False(t, report.AllBooked)
}

func TestCancelPolicy(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.ErrorIs(t, e.CancelReservation("missing"), ErrNotFound)

	res, err := e.BookReservation(bookingReq(2, model.AnyPreference, model.AnyPreference))
	require.NoError(t, err)
	require.NoError(t, e.CancelReservation(res.ID))
	// Second cancel is idempotent success.
	require.NoError(t, e.CancelReservation(res.ID))

	got, err := e.GetReservation(res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, got.Status)
}

func TestAvailabilityAllBookedFlag(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// Only T12 matches Outdoor/Private for 8 guests.
	res, err := e.BookReservation(bookingReq(8, "Outdoor", "Private"))
	require.NoError(t, err)
	require.Equal(t, uint64(12), res.TableID)

	report, err := e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 8,
		Location: "Outdoor", Segment: "Private",
	})
	require.NoError(t, err)
	assert.True(t, report.AllBooked)

	// No matching tables at all: allBooked must stay false.
	report, err = e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 20,
		Location: model.AnyPreference, Segment: model.AnyPreference,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Tables)
	assert.False(t, report.AllBooked)
}

func TestBookingValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	tests := []struct {
		name string
		mut  func(*BookingRequest)
	}{
		{"zero guests", func(r *BookingRequest) { r.GuestCount = 0 }},
		{"unknown slot", func(r *BookingRequest) { r.TimeSlot = "23:00-24:00" }},
		{"malformed date", func(r *BookingRequest) { r.Date = "05-09-2026" }},
		{"past date", func(r *BookingRequest) { r.Date = "2026-08-20" }},
		{"missing name", func(r *BookingRequest) { r.CustomerName = "  " }},
		{"missing contact", func(r *BookingRequest) { r.CustomerContact = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingReq(2, model.AnyPreference, model.AnyPreference)
			tt.mut(&req)
			_, err := e.BookReservation(req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	// A failed validation leaves no record behind.
	report, err := e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 2,
		Location: model.AnyPreference, Segment: model.AnyPreference,
	})
	require.NoError(t, err)
	for _, row := range report.Tables {
		assert.True(t, row.Available)
	}
}

func TestRestoreReservationsAtBoot(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.RestoreReservation(model.Reservation{
		ID: "r1", UserID: "u1", TableID: 3, Date: testDate,
		TimeSlot: "19:00-20:00", GuestCount: 4, Status: model.ReservationConfirmed,
	})
	e.RestoreReservation(model.Reservation{
		ID: "r2", UserID: "u2", TableID: 4, Date: testDate,
		TimeSlot: "19:00-20:00", GuestCount: 4, Status: model.ReservationCancelled,
	})

	report, err := e.CheckAvailability(AvailabilityQuery{
		Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 1,
		Location: model.AnyPreference, Segment: model.AnyPreference,
	})
	require.NoError(t, err)
	byID := make(map[uint64]bool)
	for _, row := range report.Tables {
		byID[row.Table.ID] = row.Available
	}
	assert.False(t, byID[3], "restored confirmed reservation must occupy its table")
	assert.True(t, byID[4], "restored cancelled reservation must not occupy its table")

	// Restored cancelled rows keep cancel idempotent across restarts.
	require.NoError(t, e.CancelReservation("r2"))
	require.True(t, errors.Is(e.CancelReservation("r3"), ErrNotFound))
}
