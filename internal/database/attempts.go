package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omriShneor/tailortalk/internal/booking"
)

// BookingAttempt is one row of the booking audit log.
type BookingAttempt struct {
	ID          string     `json:"id"`
	CalendarID  string     `json:"calendar_id"`
	Summary     string     `json:"summary"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Attendees   []string   `json:"attendees"`
	Outcome     string     `json:"outcome"`
	EventID     string     `json:"event_id,omitempty"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

const defaultAttemptLimit = 50

// RecordAttempt stores a terminal booking outcome. It implements booking.Recorder.
func (d *DB) RecordAttempt(ctx context.Context, attempt booking.Attempt) error {
	attendees := attempt.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	attendeesJSON, err := json.Marshal(attendees)
	if err != nil {
		return fmt.Errorf("failed to encode attendees: %w", err)
	}

	_, err = d.ExecContext(ctx, `
		INSERT INTO booking_attempts (
			id, calendar_id, summary, start_time, end_time, attendees,
			outcome, event_id, error_detail, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(), calendarOrPrimary(attempt.CalendarID), attempt.Summary,
		nullableTime(attempt.Start), nullableTime(attempt.End), string(attendeesJSON),
		string(attempt.Outcome), nullableString(attempt.EventID), nullableString(attempt.Detail),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record booking attempt: %w", err)
	}
	return nil
}

// MarkCancelled stamps the attempts that created eventID as cancelled.
func (d *DB) MarkCancelled(ctx context.Context, eventID string) error {
	_, err := d.ExecContext(ctx, `
		UPDATE booking_attempts SET cancelled_at = ?
		WHERE event_id = ? AND cancelled_at IS NULL
	`, time.Now().UTC(), eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event %s cancelled: %w", eventID, err)
	}
	return nil
}

// ListAttempts returns the most recent attempts first.
func (d *DB) ListAttempts(ctx context.Context, limit int) ([]BookingAttempt, error) {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}

	rows, err := d.QueryContext(ctx, `
		SELECT id, calendar_id, summary, start_time, end_time, attendees,
			outcome, event_id, error_detail, created_at, cancelled_at
		FROM booking_attempts
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking attempts: %w", err)
	}
	defer rows.Close()

	var attempts []BookingAttempt
	for rows.Next() {
		var a BookingAttempt
		var startTime, endTime, cancelledAt sql.NullTime
		var eventID, detail sql.NullString
		var attendeesJSON string

		if err := rows.Scan(
			&a.ID, &a.CalendarID, &a.Summary, &startTime, &endTime, &attendeesJSON,
			&a.Outcome, &eventID, &detail, &a.CreatedAt, &cancelledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking attempt: %w", err)
		}

		if startTime.Valid {
			a.StartTime = &startTime.Time
		}
		if endTime.Valid {
			a.EndTime = &endTime.Time
		}
		if cancelledAt.Valid {
			a.CancelledAt = &cancelledAt.Time
		}
		a.EventID = eventID.String
		a.ErrorDetail = detail.String

		if err := json.Unmarshal([]byte(attendeesJSON), &a.Attendees); err != nil {
			return nil, fmt.Errorf("failed to decode attendees for %s: %w", a.ID, err)
		}

		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

func calendarOrPrimary(calendarID string) string {
	if calendarID == "" {
		return "primary"
	}
	return calendarID
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ booking.Recorder = (*DB)(nil)
