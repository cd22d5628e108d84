package repository

import (
	"context"
	"database/sql"

	"github.com/dineflow/table-reservation/internal/model"
)

// Store bundles the repositories into the engine's write-behind
// persistence collaborator.  It satisfies engine.Store.
type Store struct {
	Reservations *ReservationRepo
	WalkIn       *WalkInRepo
	SlotQueue    *SlotQueueRepo
}

// NewStore wires a Store over one database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Reservations: NewReservationRepo(db),
		WalkIn:       NewWalkInRepo(db),
		SlotQueue:    NewSlotQueueRepo(db),
	}
}

func (s *Store) SaveReservation(ctx context.Context, res model.Reservation) error {
	return s.Reservations.Save(ctx, res)
}

func (s *Store) SaveWalkInEntries(ctx context.Context, entries []model.WalkInQueueEntry) error {
	return s.WalkIn.SaveBulk(ctx, entries)
}

func (s *Store) DeleteWalkInEntry(ctx context.Context, id string) error {
	return s.WalkIn.Delete(ctx, id)
}

func (s *Store) SaveSlotQueueEntries(ctx context.Context, entries []model.SlotQueueEntry) error {
	return s.SlotQueue.SaveBulk(ctx, entries)
}

func (s *Store) DeleteSlotQueueEntry(ctx context.Context, id string) error {
	return s.SlotQueue.Delete(ctx, id)
}
