package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dineflow/table-reservation/internal/model"
)

// WalkInRepo persists walk-in queue entries.  Bulk saves are upserts so
// the same statement covers a fresh join, a resequenced partition after
// a cancellation and a flipped notification latch.
type WalkInRepo struct {
	db *sql.DB
}

// NewWalkInRepo returns a WalkInRepo bound to the database.
func NewWalkInRepo(db *sql.DB) *WalkInRepo { return &WalkInRepo{db: db} }

// SaveBulk inserts or updates the given entries in one statement.
// Passing an empty slice has no effect and returns nil.
func (r *WalkInRepo) SaveBulk(ctx context.Context, entries []model.WalkInQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `INSERT INTO walkin_queue
	          (entry_id, customer_name, guest_count, notification_method, contact,
	           hall_preference, segment_preference, position, estimated_wait_minutes,
	           joined_at, queue_date, notified_almost_ready) VALUES `
	args := make([]interface{}, 0, len(entries)*12)
	for i, e := range entries {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			e.ID, e.CustomerName, e.GuestCount, e.NotificationMethod, e.Contact,
			e.HallPreference, e.SegmentPreference, e.Position, e.EstimatedWaitMinutes,
			e.JoinedAt.UTC().Format("2006-01-02 15:04:05.000000"), e.QueueDate, e.NotifiedAlmostReady,
		)
	}
	query += ` ON DUPLICATE KEY UPDATE
	             position = VALUES(position),
	             estimated_wait_minutes = VALUES(estimated_wait_minutes),
	             notified_almost_ready = VALUES(notified_almost_ready)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes one entry.  Deleting a row that is already gone is not
// an error; queue cancellation is idempotent end to end.
func (r *WalkInRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM walkin_queue WHERE entry_id = ?`, id)
	return err
}

// ListFromDate returns entries queued for the given date or later,
// ordered by partition and join time so the engine can restore them in
// sequence.
func (r *WalkInRepo) ListFromDate(ctx context.Context, date string) ([]model.WalkInQueueEntry, error) {
	const q = `SELECT entry_id, customer_name, guest_count, notification_method, contact,
	                  hall_preference, segment_preference, position, estimated_wait_minutes,
	                  joined_at, queue_date, notified_almost_ready
	           FROM walkin_queue
	           WHERE queue_date >= ?
	           ORDER BY queue_date ASC, guest_count ASC, hall_preference ASC,
	                    segment_preference ASC, joined_at ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WalkInQueueEntry
	for rows.Next() {
		var e model.WalkInQueueEntry
		var joinedAt time.Time
		if err := rows.Scan(
			&e.ID, &e.CustomerName, &e.GuestCount, &e.NotificationMethod, &e.Contact,
			&e.HallPreference, &e.SegmentPreference, &e.Position, &e.EstimatedWaitMinutes,
			&joinedAt, &e.QueueDate, &e.NotifiedAlmostReady,
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
