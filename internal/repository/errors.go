// Package repository persists engine state to MySQL.  The engine owns
// the authoritative in-memory state; these repositories record it
// (write-behind) and reload it at startup.  All timestamps are stored
// in UTC.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Handlers and
// loaders use errors.Is against it instead of comparing sql.ErrNoRows
// directly.
var ErrNotFound = errors.New("not found")
