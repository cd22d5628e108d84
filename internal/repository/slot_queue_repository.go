package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dineflow/table-reservation/internal/model"
)

// SlotQueueRepo persists slot waiting-queue entries, mirroring the
// walk-in repository with the (date, time_slot) partition key.
type SlotQueueRepo struct {
	db *sql.DB
}

// NewSlotQueueRepo returns a SlotQueueRepo bound to the database.
func NewSlotQueueRepo(db *sql.DB) *SlotQueueRepo { return &SlotQueueRepo{db: db} }

// SaveBulk inserts or updates the given entries in one statement.
func (r *SlotQueueRepo) SaveBulk(ctx context.Context, entries []model.SlotQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `INSERT INTO slot_waiting_queue
	          (queue_id, user_id, res_date, time_slot, guest_count, position,
	           estimated_wait_range, joined_at, notified_almost_ready) VALUES `
	args := make([]interface{}, 0, len(entries)*9)
	for i, e := range entries {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			e.ID, e.UserID, e.Date, e.TimeSlot, e.GuestCount, e.Position,
			e.EstimatedWaitRange, e.JoinedAt.UTC().Format("2006-01-02 15:04:05.000000"),
			e.NotifiedAlmostReady,
		)
	}
	query += ` ON DUPLICATE KEY UPDATE
	             position = VALUES(position),
	             estimated_wait_range = VALUES(estimated_wait_range),
	             notified_almost_ready = VALUES(notified_almost_ready)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes one entry; missing rows are not an error.
func (r *SlotQueueRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM slot_waiting_queue WHERE queue_id = ?`, id)
	return err
}

// ListFromDate returns entries for the given date or later in restore
// order: partition by (date, slot), then join time ascending.
func (r *SlotQueueRepo) ListFromDate(ctx context.Context, date string) ([]model.SlotQueueEntry, error) {
	const q = `SELECT queue_id, user_id, res_date, time_slot, guest_count, position,
	                  estimated_wait_range, joined_at, notified_almost_ready
	           FROM slot_waiting_queue
	           WHERE res_date >= ?
	           ORDER BY res_date ASC, time_slot ASC, joined_at ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SlotQueueEntry
	for rows.Next() {
		var e model.SlotQueueEntry
		var joinedAt time.Time
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Date, &e.TimeSlot, &e.GuestCount, &e.Position,
			&e.EstimatedWaitRange, &joinedAt, &e.NotifiedAlmostReady,
		); err != nil {
			return nil, err
		}
		e.JoinedAt = joinedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
