package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/dineflow/table-reservation/internal/model"
)

// allocator assigns tables to (date, timeSlot) booking requests.  Each
// (date, timeSlot) pair is a partition with its own lock and occupancy
// map, so two concurrent bookings for the same slot serialize while
// bookings for different slots run fully in parallel.
type allocator struct {
	inventory []model.Table // sorted ascending by ID, immutable

	mu    sync.RWMutex
	parts map[string]*slotPartition
	byID  map[string]*reservationRef
}

// reservationRef locates a reservation inside its partition.  The
// reservation value itself is only read or mutated under the partition
// lock.
type reservationRef struct {
	partitionKey string
	res          *model.Reservation
}

// slotPartition holds the occupancy of one (date, timeSlot).  occupied
// maps table id to the active reservation holding it; cancelled
// reservations are removed immediately so the table becomes visible to
// the next booking.
type slotPartition struct {
	mu       sync.Mutex
	occupied map[uint64]string
	version  uint64
}

func newAllocator(inventory []model.Table) *allocator {
	tables := make([]model.Table, len(inventory))
	copy(tables, inventory)
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return &allocator{
		inventory: tables,
		parts:     make(map[string]*slotPartition),
		byID:      make(map[string]*reservationRef),
	}
}

func slotKey(date, timeSlot string) string { return date + "|" + timeSlot }

func (a *allocator) partition(key string) *slotPartition {
	a.mu.RLock()
	p, ok := a.parts[key]
	a.mu.RUnlock()
	if ok {
		return p
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok = a.parts[key]; ok {
		return p
	}
	p = &slotPartition{occupied: make(map[uint64]string)}
	a.parts[key] = p
	return p
}

// book allocates the lowest-id free table matching the request and
// records a confirmed reservation.  The lowest-id tie-break makes
// allocation deterministic and reproducible.  ErrNoTableAvailable is
// returned when every matching table is taken.
func (a *allocator) book(res *model.Reservation, now time.Time) error {
	key := slotKey(res.Date, res.TimeSlot)
	p := a.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	var table *model.Table
	for i := range a.inventory {
		t := &a.inventory[i]
		if !t.Matches(res.GuestCount, res.Location, res.Segment) {
			continue
		}
		if _, taken := p.occupied[t.ID]; taken {
			continue
		}
		table = t
		break
	}
	if table == nil {
		return ErrNoTableAvailable
	}

	res.TableID = table.ID
	res.Status = model.ReservationConfirmed
	res.CreatedAt = now
	p.occupied[table.ID] = res.ID
	p.version++

	a.mu.Lock()
	a.byID[res.ID] = &reservationRef{partitionKey: key, res: res}
	a.mu.Unlock()
	return nil
}

// restore re-registers a persisted reservation at boot.  Cancelled rows
// are indexed (so cancel stays idempotent across restarts) but do not
// occupy a table.
func (a *allocator) restore(res model.Reservation) {
	key := slotKey(res.Date, res.TimeSlot)
	p := a.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	r := res
	if r.Status != model.ReservationCancelled && r.TableID != 0 {
		p.occupied[r.TableID] = r.ID
	}
	a.mu.Lock()
	a.byID[r.ID] = &reservationRef{partitionKey: key, res: &r}
	a.mu.Unlock()
}

// cancel marks the reservation cancelled and frees its table.  Unknown
// ids return ErrNotFound; cancelling twice is idempotent success.
func (a *allocator) cancel(id string) (model.Reservation, error) {
	a.mu.RLock()
	ref, ok := a.byID[id]
	a.mu.RUnlock()
	if !ok {
		return model.Reservation{}, ErrNotFound
	}

	p := a.partition(ref.partitionKey)
	p.mu.Lock()
	defer p.mu.Unlock()
	if ref.res.Status == model.ReservationCancelled {
		return *ref.res, nil
	}
	ref.res.Status = model.ReservationCancelled
	delete(p.occupied, ref.res.TableID)
	p.version++
	return *ref.res, nil
}

// get returns a snapshot of the reservation with the given id.
func (a *allocator) get(id string) (model.Reservation, error) {
	a.mu.RLock()
	ref, ok := a.byID[id]
	a.mu.RUnlock()
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	p := a.partition(ref.partitionKey)
	p.mu.Lock()
	defer p.mu.Unlock()
	return *ref.res, nil
}

// TableAvailability is one row of an availability report: a table from
// the inventory and whether it is free for the queried (date, timeSlot).
type TableAvailability struct {
	Table     model.Table `json:"table"`
	Available bool        `json:"available"`
}

// availability filters the inventory like book does and marks each
// matching table free or taken.  allBooked is true when at least one
// table matches the request but none of them is free; it is the signal
// for offering the slot waiting queue.
func (a *allocator) availability(date, timeSlot string, guests int, location, segment string) (rows []TableAvailability, allBooked bool) {
	p := a.partition(slotKey(date, timeSlot))
	p.mu.Lock()
	defer p.mu.Unlock()

	rows = make([]TableAvailability, 0, len(a.inventory))
	free := 0
	for _, t := range a.inventory {
		if !t.Matches(guests, location, segment) {
			continue
		}
		_, taken := p.occupied[t.ID]
		if !taken {
			free++
		}
		rows = append(rows, TableAvailability{Table: t, Available: !taken})
	}
	allBooked = len(rows) > 0 && free == 0
	return rows, allBooked
}
