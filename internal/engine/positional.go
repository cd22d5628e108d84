package engine

import (
	"sync"
	"time"
)

// almostReadyBandMinutes bounds the "almost ready" band.  The latch fires
// exactly once per entry, the first time its countdown lands in (0, 5].
const almostReadyBandMinutes = 5.0

// queueItem pairs an entry payload with the bookkeeping the shared
// algorithm needs.  The payload is a value copy; derived fields inside it
// are kept in sync through the queue's sync callback.
type queueItem[T any] struct {
	id       string
	joinedAt time.Time
	position int
	notified bool
	payload  T
}

// queuePartition is one partition's ordered entries plus a version
// counter.  The counter increments on every mutation so pollers can skip
// unchanged partitions instead of re-reading full snapshots.
type queuePartition[T any] struct {
	mu      sync.Mutex
	items   []*queueItem[T]
	version uint64
}

// positionalQueue is the shared positional-queue algorithm.  It is
// instantiated twice: once for the walk-in queue (partitioned by guest
// count, hall, segment and date) and once for the slot waiting queue
// (partitioned by date and time slot).  Positions within a partition are
// contiguous from 1, ordered by join time; cancellation resequences the
// remaining entries.
//
// The estimated wait is a per-entry deterministic countdown seeded at
// join time: max(0, position*slotMinutes - minutes since join).  It is
// not recomputed from other entries' progress; only a position change
// (via cancellation of an earlier entry) shortens it.
type positionalQueue[T any] struct {
	mu    sync.RWMutex
	parts map[string]*queuePartition[T]
	index map[string]string // entry id -> partition key

	slotMinutes float64
	clock       Clock

	// sync copies derived state into the payload.  Called with the
	// partition lock held.
	sync func(payload *T, position int, waitMinutes float64, notified bool)
	// onNotify fires at most once per entry when the countdown enters
	// the almost-ready band.  Called with the partition lock held; the
	// receiver must not call back into the queue.
	onNotify func(payload T)
	// onChange reports a resequenced partition snapshot after a
	// cancellation so positions can be persisted.
	onChange func(partitionKey string, items []T)
}

func newPositionalQueue[T any](clock Clock, slotMinutes float64) *positionalQueue[T] {
	return &positionalQueue[T]{
		parts:       make(map[string]*queuePartition[T]),
		index:       make(map[string]string),
		slotMinutes: slotMinutes,
		clock:       clock,
	}
}

// partition returns the partition for key, creating it on first use.
func (q *positionalQueue[T]) partition(key string) *queuePartition[T] {
	q.mu.RLock()
	p, ok := q.parts[key]
	q.mu.RUnlock()
	if ok {
		return p
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if p, ok = q.parts[key]; ok {
		return p
	}
	p = &queuePartition[T]{}
	q.parts[key] = p
	return p
}

// join appends a new entry to the partition and returns its position and
// initial wait.  Position is the count of active entries plus one.
func (q *positionalQueue[T]) join(key, id string, payload T) T {
	p := q.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	it := &queueItem[T]{
		id:       id,
		joinedAt: q.clock.Now(),
		position: len(p.items) + 1,
		payload:  payload,
	}
	wait := float64(it.position) * q.slotMinutes
	q.sync(&it.payload, it.position, wait, false)
	p.items = append(p.items, it)
	p.version++

	q.mu.Lock()
	q.index[id] = key
	q.mu.Unlock()

	return it.payload
}

// restore re-inserts a previously persisted entry, keeping its original
// join time and latch state.  Used when reloading engine state at boot;
// the caller appends entries in joinedAt order.
func (q *positionalQueue[T]) restore(key, id string, joinedAt time.Time, notified bool, payload T) {
	p := q.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	it := &queueItem[T]{
		id:       id,
		joinedAt: joinedAt,
		position: len(p.items) + 1,
		notified: notified,
		payload:  payload,
	}
	q.refresh(it, q.clock.Now())
	p.items = append(p.items, it)
	p.version++

	q.mu.Lock()
	q.index[id] = key
	q.mu.Unlock()
}

// cancel removes the entry and resequences the survivors.  Unknown ids
// are a no-op; the bool reports whether anything was removed.
func (q *positionalQueue[T]) cancel(id string) bool {
	q.mu.Lock()
	key, ok := q.index[id]
	if ok {
		delete(q.index, id)
	}
	q.mu.Unlock()
	if !ok {
		return false
	}

	p := q.partition(key)
	p.mu.Lock()
	idx := -1
	for i, it := range p.items {
		if it.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return false
	}
	p.items = append(p.items[:idx], p.items[idx+1:]...)

	// Renumber by join order and refresh the countdown; an entry whose
	// position drops may cross into the almost-ready band here.
	now := q.clock.Now()
	for i, it := range p.items {
		it.position = i + 1
		q.refresh(it, now)
	}
	p.version++
	snapshot := make([]T, len(p.items))
	for i, it := range p.items {
		snapshot[i] = it.payload
	}
	p.mu.Unlock()

	if q.onChange != nil {
		q.onChange(key, snapshot)
	}
	return true
}

// setNotified forces the latch true for an entry.  Idempotent; returns
// false only when the entry is unknown.
func (q *positionalQueue[T]) setNotified(id string) (T, bool) {
	var zero T
	q.mu.RLock()
	key, ok := q.index[id]
	q.mu.RUnlock()
	if !ok {
		return zero, false
	}
	p := q.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if it.id != id {
			continue
		}
		it.notified = true
		wait := q.countdown(it, q.clock.Now())
		q.sync(&it.payload, it.position, wait, true)
		p.version++
		return it.payload, true
	}
	return zero, false
}

// recompute sweeps every partition, updating countdowns and firing the
// almost-ready latch where due.  It runs on a fixed interval and needs
// no cross-partition coordination.
func (q *positionalQueue[T]) recompute(now time.Time) {
	q.mu.RLock()
	parts := make([]*queuePartition[T], 0, len(q.parts))
	for _, p := range q.parts {
		parts = append(parts, p)
	}
	q.mu.RUnlock()

	for _, p := range parts {
		p.mu.Lock()
		for _, it := range p.items {
			q.refresh(it, now)
		}
		p.mu.Unlock()
	}
}

// countdown returns the remaining wait in minutes, clamped at zero.
func (q *positionalQueue[T]) countdown(it *queueItem[T], now time.Time) float64 {
	elapsed := now.Sub(it.joinedAt).Minutes()
	wait := float64(it.position)*q.slotMinutes - elapsed
	if wait < 0 {
		return 0
	}
	return wait
}

// refresh recomputes one entry's wait and evaluates the notification
// trigger.  The latch is monotonic: once true it never re-fires, even if
// a later position change moves the countdown back through the band.
func (q *positionalQueue[T]) refresh(it *queueItem[T], now time.Time) {
	wait := q.countdown(it, now)
	if !it.notified && wait > 0 && wait <= almostReadyBandMinutes {
		it.notified = true
		q.sync(&it.payload, it.position, wait, true)
		if q.onNotify != nil {
			q.onNotify(it.payload)
		}
		return
	}
	q.sync(&it.payload, it.position, wait, it.notified)
}

// list returns a snapshot of the partition's payloads in position order
// along with the partition version.
func (q *positionalQueue[T]) list(key string) ([]T, uint64) {
	q.mu.RLock()
	p, ok := q.parts[key]
	q.mu.RUnlock()
	if !ok {
		return []T{}, 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	for i, it := range p.items {
		out[i] = it.payload
	}
	return out, p.version
}

// collect returns payload snapshots from every partition whose key is
// accepted by keep.  Used for whole-day listings.
func (q *positionalQueue[T]) collect(keep func(key string) bool) []T {
	q.mu.RLock()
	keys := make([]string, 0, len(q.parts))
	for k := range q.parts {
		if keep(k) {
			keys = append(keys, k)
		}
	}
	q.mu.RUnlock()

	var out []T
	for _, k := range keys {
		items, _ := q.list(k)
		out = append(out, items...)
	}
	return out
}
