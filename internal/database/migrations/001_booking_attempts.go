package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "booking_attempts",
		Up:      bookingAttempts,
	})
}

func bookingAttempts(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS booking_attempts (
			id TEXT PRIMARY KEY,
			calendar_id TEXT NOT NULL DEFAULT 'primary',
			summary TEXT NOT NULL DEFAULT '',
			start_time DATETIME,
			end_time DATETIME,
			attendees TEXT NOT NULL DEFAULT '[]',
			outcome TEXT NOT NULL CHECK(outcome IN ('success', 'conflict', 'unavailable', 'backend_error', 'past_date', 'invalid_details')),
			event_id TEXT,
			error_detail TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_attempts_created ON booking_attempts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_attempts_outcome ON booking_attempts(outcome)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
