package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "booking_attempts_cancelled_at",
		Up:      bookingAttemptsCancelledAt,
	})
}

// bookingAttemptsCancelledAt tracks events later cancelled through the API.
func bookingAttemptsCancelledAt(db *sql.DB) error {
	if err := AddColumnIfNotExists(db, "booking_attempts", "cancelled_at", "DATETIME"); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_booking_attempts_event ON booking_attempts(event_id)`)
	return err
}
