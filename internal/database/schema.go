package database

import (
	"context"
	"database/sql"
)

// schema lists the DDL applied at startup.  Statements are idempotent;
// the partition-key indices back the partition-scoped listing queries.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS dining_tables (
		id        BIGINT UNSIGNED NOT NULL,
		name      VARCHAR(32)     NOT NULL,
		location  VARCHAR(64)     NOT NULL,
		segment   VARCHAR(64)     NOT NULL,
		capacity  INT             NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		reservation_id   VARCHAR(36)  NOT NULL,
		user_id          VARCHAR(64)  NOT NULL,
		table_id         BIGINT UNSIGNED NOT NULL DEFAULT 0,
		res_date         CHAR(10)     NOT NULL,
		time_slot        VARCHAR(16)  NOT NULL,
		guest_count      INT          NOT NULL,
		location         VARCHAR(64)  NOT NULL DEFAULT 'Any',
		segment          VARCHAR(64)  NOT NULL DEFAULT 'Any',
		customer_name    VARCHAR(128) NOT NULL,
		customer_contact VARCHAR(128) NOT NULL,
		status           VARCHAR(16)  NOT NULL,
		created_at       DATETIME     NOT NULL,
		PRIMARY KEY (reservation_id),
		KEY idx_reservations_slot (res_date, time_slot),
		KEY idx_reservations_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS walkin_queue (
		entry_id               VARCHAR(36)  NOT NULL,
		customer_name          VARCHAR(128) NOT NULL,
		guest_count            INT          NOT NULL,
		notification_method    VARCHAR(16)  NOT NULL,
		contact                VARCHAR(128) NOT NULL,
		hall_preference        VARCHAR(64)  NOT NULL,
		segment_preference     VARCHAR(64)  NOT NULL,
		position               INT          NOT NULL,
		estimated_wait_minutes DOUBLE       NOT NULL,
		joined_at              DATETIME(6)  NOT NULL,
		queue_date             CHAR(10)     NOT NULL,
		notified_almost_ready  BOOLEAN      NOT NULL DEFAULT FALSE,
		PRIMARY KEY (entry_id),
		KEY idx_walkin_partition (queue_date, guest_count, hall_preference, segment_preference)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS slot_waiting_queue (
		queue_id              VARCHAR(36) NOT NULL,
		user_id               VARCHAR(64) NOT NULL,
		res_date              CHAR(10)    NOT NULL,
		time_slot             VARCHAR(16) NOT NULL,
		guest_count           INT         NOT NULL,
		position              INT         NOT NULL,
		estimated_wait_range  VARCHAR(32) NOT NULL,
		joined_at             DATETIME(6) NOT NULL,
		notified_almost_ready BOOLEAN     NOT NULL DEFAULT FALSE,
		PRIMARY KEY (queue_id),
		KEY idx_slot_queue_partition (res_date, time_slot)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
