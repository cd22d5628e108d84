package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dineflow/table-reservation/internal/model"
)

// ReservationRepo persists reservations.  Saves are upserts keyed by the
// reservation id, so the same method records creations, cancellations
// and any later status change coming out of the engine.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Save inserts or updates one reservation row.
func (r *ReservationRepo) Save(ctx context.Context, res model.Reservation) error {
	const q = `INSERT INTO reservations
	           (reservation_id, user_id, table_id, res_date, time_slot, guest_count,
	            location, segment, customer_name, customer_contact, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             table_id = VALUES(table_id),
	             status = VALUES(status)`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.UserID, res.TableID, res.Date, res.TimeSlot, res.GuestCount,
		res.Location, res.Segment, res.CustomerName, res.CustomerContact, res.Status,
		res.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return err
}

// ListFromDate returns every reservation for the given service date or
// later, oldest first.  Cancelled rows are included: the engine needs
// them so repeated cancellations stay idempotent across restarts.
func (r *ReservationRepo) ListFromDate(ctx context.Context, date string) ([]model.Reservation, error) {
	const q = `SELECT reservation_id, user_id, table_id, res_date, time_slot, guest_count,
	                  location, segment, customer_name, customer_contact, status, created_at
	           FROM reservations
	           WHERE res_date >= ?
	           ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		var createdAt time.Time
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.TableID, &res.Date, &res.TimeSlot, &res.GuestCount,
			&res.Location, &res.Segment, &res.CustomerName, &res.CustomerContact, &res.Status,
			&createdAt,
		); err != nil {
			return nil, err
		}
		res.CreatedAt = createdAt.UTC()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
