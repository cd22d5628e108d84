package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dineflow/table-reservation/internal/model"
)

// Store is the persistence collaborator.  Every method is invoked after
// the in-memory state transition has committed, from a background
// goroutine: a failed write is logged but never rolls the engine back.
// Save methods have upsert semantics keyed by the entity id.
type Store interface {
	SaveReservation(ctx context.Context, res model.Reservation) error
	SaveWalkInEntries(ctx context.Context, entries []model.WalkInQueueEntry) error
	DeleteWalkInEntry(ctx context.Context, id string) error
	SaveSlotQueueEntries(ctx context.Context, entries []model.SlotQueueEntry) error
	DeleteSlotQueueEntry(ctx context.Context, id string) error
}

// EventSink receives domain events after state transitions commit.
// Implementations must not block; delivery is best effort and failures
// stay downstream.  The notification flag records "we decided to
// notify" regardless of what happens to the event afterwards.
type EventSink interface {
	ReservationConfirmed(res model.Reservation)
	AlmostReady(entry model.WalkInQueueEntry)
	SlotAlmostReady(entry model.SlotQueueEntry)
}

// Engine is the allocation and queueing core.  It owns the table
// inventory, the reservation allocator and both waiting queues as
// process-wide state behind partition-scoped locks.  Handlers talk to
// the Engine only; they never touch repositories directly.
type Engine struct {
	clock  Clock
	store  Store
	events EventSink
	log    *logrus.Logger

	alloc  *allocator
	walkin *positionalQueue[model.WalkInQueueEntry]
	slots  *positionalQueue[model.SlotQueueEntry]
}

// New builds an Engine over the given inventory.  store and events may
// be nil, in which case persistence and event publishing are skipped;
// tests rely on that.
func New(inventory []model.Table, clock Clock, store Store, events EventSink, log *logrus.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{
		clock:  clock,
		store:  store,
		events: events,
		log:    log,
		alloc:  newAllocator(inventory),
	}

	e.walkin = newPositionalQueue[model.WalkInQueueEntry](clock, model.SlotDurationMinutes)
	e.walkin.sync = func(p *model.WalkInQueueEntry, position int, wait float64, notified bool) {
		p.Position = position
		p.EstimatedWaitMinutes = wait
		p.NotifiedAlmostReady = notified
	}
	e.walkin.onNotify = func(entry model.WalkInQueueEntry) {
		if e.events != nil {
			go e.events.AlmostReady(entry)
		}
		e.persist("walkin almost-ready latch", func(ctx context.Context) error {
			return e.store.SaveWalkInEntries(ctx, []model.WalkInQueueEntry{entry})
		})
	}
	e.walkin.onChange = func(_ string, entries []model.WalkInQueueEntry) {
		e.persist("walkin resequence", func(ctx context.Context) error {
			return e.store.SaveWalkInEntries(ctx, entries)
		})
	}

	e.slots = newPositionalQueue[model.SlotQueueEntry](clock, model.SlotDurationMinutes)
	e.slots.sync = func(p *model.SlotQueueEntry, position int, _ float64, notified bool) {
		p.Position = position
		p.EstimatedWaitRange = waitRangeForPosition(position)
		p.NotifiedAlmostReady = notified
	}
	e.slots.onNotify = func(entry model.SlotQueueEntry) {
		if e.events != nil {
			go e.events.SlotAlmostReady(entry)
		}
		e.persist("slot-queue almost-ready latch", func(ctx context.Context) error {
			return e.store.SaveSlotQueueEntries(ctx, []model.SlotQueueEntry{entry})
		})
	}
	e.slots.onChange = func(_ string, entries []model.SlotQueueEntry) {
		e.persist("slot-queue resequence", func(ctx context.Context) error {
			return e.store.SaveSlotQueueEntries(ctx, entries)
		})
	}
	return e
}

// Tables returns the inventory in ascending table-id order.
func (e *Engine) Tables() []model.Table {
	out := make([]model.Table, len(e.alloc.inventory))
	copy(out, e.alloc.inventory)
	return out
}

// Now exposes the engine clock, mainly for handlers that validate dates.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// RunRecomputeLoop drives the per-entry wait countdowns until ctx is
// cancelled.  One-second granularity is plenty for a five-minute band.
func (e *Engine) RunRecomputeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.Recompute(now.UTC())
		}
	}
}

// Recompute refreshes every queue entry's countdown at the given time
// and fires any due almost-ready latches.  Exported so tests can drive
// simulated time through the fake clock without the ticker.
func (e *Engine) Recompute(now time.Time) {
	e.walkin.recompute(now)
	e.slots.recompute(now)
}

// persist runs a store write in the background with a bounded context.
// No engine operation ever blocks on persistence.
func (e *Engine) persist(op string, fn func(ctx context.Context) error) {
	if e.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			e.log.WithError(err).WithField("op", op).Error("write-behind persistence failed")
		}
	}()
}
