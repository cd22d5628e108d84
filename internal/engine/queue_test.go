package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineflow/table-reservation/internal/model"
)

func walkInReq(guests int, hall, segment string) WalkInRequest {
	return WalkInRequest{
		CustomerName:       "Sam",
		GuestCount:         guests,
		NotificationMethod: "sms",
		Contact:            "+1555000111",
		HallPreference:     hall,
		SegmentPreference:  segment,
		QueueDate:          testDate,
	}
}

func TestWalkInPositionsAreSequentialPerPartition(t *testing.T) {
	e, _, _ := newTestEngine(t)

	for want := 1; want <= 3; want++ {
		entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
		require.NoError(t, err)
		assert.Equal(t, want, entry.Position)
		assert.Equal(t, float64(want)*model.SlotDurationMinutes, entry.EstimatedWaitMinutes)
		assert.False(t, entry.NotifiedAlmostReady)
	}

	// A different partition starts its own numbering.
	entry, err := e.JoinWalkInQueue(walkInReq(2, "Main Hall", model.AnyPreference))
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Position)
}

func TestWalkInCountdownIsMonotonicAndClamped(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)
	require.Equal(t, 60.0, entry.EstimatedWaitMinutes)

	prev := entry.EstimatedWaitMinutes
	for i := 0; i < 8; i++ {
		clock.Advance(10 * time.Minute)
		e.Recompute(clock.Now())
		entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
		require.Len(t, entries, 1)
		wait := entries[0].EstimatedWaitMinutes
		assert.LessOrEqual(t, wait, prev, "wait must be non-increasing")
		assert.GreaterOrEqual(t, wait, 0.0)
		prev = wait
	}
	assert.Equal(t, 0.0, prev, "wait clamps at zero")
}

func TestAlmostReadyLatchFiresExactlyOnce(t *testing.T) {
	e, clock, sink := newTestEngine(t)

	_, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)
	second, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)
	require.Equal(t, 2, second.Position)
	require.Equal(t, 120.0, second.EstimatedWaitMinutes)

	// At 57 minutes the position-1 countdown is 3 minutes: first latch.
	clock.Advance(57 * time.Minute)
	e.Recompute(clock.Now())

	// At 115 minutes the position-2 countdown is 5 minutes: second latch.
	clock.Advance(58 * time.Minute)
	e.Recompute(clock.Now())

	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	require.Len(t, entries, 2)
	assert.LessOrEqual(t, entries[1].EstimatedWaitMinutes, 5.0)
	assert.True(t, entries[1].NotifiedAlmostReady)

	// Sweeping again must not re-fire the latch.
	clock.Advance(time.Minute)
	e.Recompute(clock.Now())
	clock.Advance(time.Minute)
	e.Recompute(clock.Now())

	assert.Eventually(t, func() bool { return sink.almostReadyCount() >= 2 },
		time.Second, 10*time.Millisecond, "both entries should notify once each")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, sink.almostReadyCount(), "latch re-fired")
}

func TestLatchDoesNotFireWhenBandIsSkipped(t *testing.T) {
	e, clock, sink := newTestEngine(t)

	_, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)

	// No sweep happens inside (0, 5]; the countdown is already clamped at
	// zero by the next recompute, so the latch stays down.
	clock.Advance(70 * time.Minute)
	e.Recompute(clock.Now())

	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].EstimatedWaitMinutes)
	assert.False(t, entries[0].NotifiedAlmostReady)
	assert.Equal(t, 0, sink.almostReadyCount())
}

func TestCancelResequencesByJoinOrder(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	var ids []string
	for i := 0; i < 3; i++ {
		entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
		require.NoError(t, err)
		ids = append(ids, entry.ID)
		clock.Advance(time.Minute)
	}

	e.CancelWalkInEntry(ids[0])

	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[1], entries[0].ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, ids[2], entries[1].ID)
	assert.Equal(t, 2, entries[1].Position)

	// The countdown reflects the new, lower position.
	assert.LessOrEqual(t, entries[0].EstimatedWaitMinutes, 60.0)

	// Cancelling an unknown id is a no-op.
	e.CancelWalkInEntry("does-not-exist")
	entries, _ = e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	assert.Len(t, entries, 2)
}

func TestPartitionVersionAdvancesOnMutation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, v0 := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)
	_, v1 := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	assert.Greater(t, v1, v0)

	e.CancelWalkInEntry(entry.ID)
	_, v2 := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	assert.Greater(t, v2, v1)
}

func TestSetWalkInNotifiedIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)

	entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
	require.NoError(t, err)

	e.SetWalkInNotified(entry.ID)
	e.SetWalkInNotified(entry.ID)

	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].NotifiedAlmostReady)

	// Unknown ids are ignored.
	e.SetWalkInNotified("missing")
}

func TestConcurrentJoinsKeepPositionsContiguous(t *testing.T) {
	e, _, _ := newTestEngine(t)

	const n = 16
	var wg sync.WaitGroup
	positions := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := e.JoinWalkInQueue(walkInReq(4, "Main Hall", model.AnyPreference))
			if err == nil {
				positions <- entry.Position
			}
		}()
	}
	wg.Wait()
	close(positions)

	seen := make(map[int]bool)
	for p := range positions {
		assert.False(t, seen[p], "duplicate position %d", p)
		seen[p] = true
	}
	require.Len(t, seen, n)
	for p := 1; p <= n; p++ {
		assert.True(t, seen[p], "missing position %d", p)
	}
}

func TestWalkInDayListingOrder(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.JoinWalkInQueue(walkInReq(2, "Outdoor", "Center"))
	require.NoError(t, err)
	_, err = e.JoinWalkInQueue(walkInReq(4, "Main Hall", "Window"))
	require.NoError(t, err)
	_, err = e.JoinWalkInQueue(walkInReq(4, "Main Hall", "Window"))
	require.NoError(t, err)

	day := e.ListWalkInDay(testDate)
	require.Len(t, day, 3)
	assert.Equal(t, "Main Hall", day[0].HallPreference)
	assert.Equal(t, 1, day[0].Position)
	assert.Equal(t, 2, day[1].Position)
	assert.Equal(t, "Outdoor", day[2].HallPreference)
}

func TestWalkInValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	tests := []struct {
		name string
		mut  func(*WalkInRequest)
	}{
		{"zero guests", func(r *WalkInRequest) { r.GuestCount = 0 }},
		{"past date", func(r *WalkInRequest) { r.QueueDate = "2026-08-01" }},
		{"bad method", func(r *WalkInRequest) { r.NotificationMethod = "carrier-pigeon" }},
		{"missing contact", func(r *WalkInRequest) { r.Contact = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := walkInReq(4, "Main Hall", model.AnyPreference)
			tt.mut(&req)
			_, err := e.JoinWalkInQueue(req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	assert.Empty(t, entries, "rejected joins must leave no entry behind")
}

func TestSlotQueuePositionsAndBands(t *testing.T) {
	e, _, _ := newTestEngine(t)

	req := SlotQueueRequest{Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 2}
	first, err := e.JoinSlotQueue(req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "0-60 minutes", first.EstimatedWaitRange)
	assert.Equal(t, "guest", first.UserID)

	second, err := e.JoinSlotQueue(req)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, "60-120 minutes", second.EstimatedWaitRange)

	// Leaving promotes the survivor into the tighter band.
	e.LeaveSlotQueue(first.ID)
	entries, _ := e.ListSlotQueue(testDate, "19:00-20:00")
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "0-60 minutes", entries[0].EstimatedWaitRange)

	// Idempotent leave.
	e.LeaveSlotQueue(first.ID)
	entries, _ = e.ListSlotQueue(testDate, "19:00-20:00")
	assert.Len(t, entries, 1)
}

func TestSlotQueueLatch(t *testing.T) {
	e, clock, sink := newTestEngine(t)

	req := SlotQueueRequest{Date: testDate, TimeSlot: "19:00-20:00", GuestCount: 2}
	entry, err := e.JoinSlotQueue(req)
	require.NoError(t, err)
	require.Equal(t, 1, entry.Position)

	clock.Advance(56 * time.Minute)
	e.Recompute(clock.Now())

	entries, _ := e.ListSlotQueue(testDate, "19:00-20:00")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].NotifiedAlmostReady)

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.slotAlmost) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRestoreWalkInEntriesKeepsOrderAndLatch(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	joined := clock.Now().Add(-30 * time.Minute)
	for i := 0; i < 2; i++ {
		e.RestoreWalkInEntry(model.WalkInQueueEntry{
			ID:                  fmt.Sprintf("w%d", i+1),
			CustomerName:        "Restored",
			GuestCount:          4,
			NotificationMethod:  "email",
			Contact:             "r@example.com",
			HallPreference:      "Main Hall",
			SegmentPreference:   model.AnyPreference,
			JoinedAt:            joined.Add(time.Duration(i) * time.Minute),
			QueueDate:           testDate,
			NotifiedAlmostReady: i == 0,
		})
	}

	entries, _ := e.ListWalkInPartition(testDate, 4, "Main Hall", model.AnyPreference)
	require.Len(t, entries, 2)
	assert.Equal(t, "w1", entries[0].ID)
	assert.Equal(t, 1, entries[0].Position)
	assert.True(t, entries[0].NotifiedAlmostReady)
	assert.Equal(t, 2, entries[1].Position)
	// 30 minutes already elapsed against a 60-minute seed.
	assert.InDelta(t, 30.0, entries[0].EstimatedWaitMinutes, 0.01)
}
