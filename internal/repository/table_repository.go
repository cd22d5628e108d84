package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TableRepo provides read access to the dining_tables inventory and the
// one-time seed performed on first start.  The inventory is immutable
// while the service runs, so there are no update or delete operations.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// TableRecord mirrors the dining_tables schema.
type TableRecord struct {
	ID       uint64
	Name     string
	Location string
	Segment  string
	Capacity int
}

// List returns every table ordered ascending by id.  The stable order
// matters: allocation tie-breaks on the lowest table id.
func (r *TableRepo) List(ctx context.Context) ([]TableRecord, error) {
	const q = `SELECT id, name, location, segment, capacity
	           FROM dining_tables ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []TableRecord
	for rows.Next() {
		var t TableRecord
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.Segment, &t.Capacity); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// GetByID returns one table or ErrNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (TableRecord, error) {
	const q = `SELECT id, name, location, segment, capacity
	           FROM dining_tables WHERE id = ?`
	var t TableRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Location, &t.Segment, &t.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return TableRecord{}, ErrNotFound
	}
	if err != nil {
		return TableRecord{}, err
	}
	return t, nil
}

// SeedIfEmpty inserts the given tables when the inventory table has no
// rows.  It runs once at startup so a fresh database comes up with the
// reference twelve-table pool.
func (r *TableRepo) SeedIfEmpty(ctx context.Context, tables []TableRecord) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dining_tables`).Scan(&count); err != nil {
		return err
	}
	if count > 0 || len(tables) == 0 {
		return nil
	}
	query := `INSERT INTO dining_tables (id, name, location, segment, capacity) VALUES `
	args := make([]interface{}, 0, len(tables)*5)
	for i, t := range tables {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, t.ID, t.Name, t.Location, t.Segment, t.Capacity)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
