package database

import (
	"context"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/database/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndListAttempts(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)

	require.NoError(t, db.RecordAttempt(ctx, booking.Attempt{
		CalendarID: "team@example.com",
		Summary:    "Meeting",
		Start:      start,
		End:        start.Add(time.Hour),
		Attendees:  []string{"john@example.com"},
		Outcome:    booking.OutcomeSuccess,
		EventID:    "evt-1",
	}))
	require.NoError(t, db.RecordAttempt(ctx, booking.Attempt{
		Outcome: booking.OutcomeInvalid,
		Detail:  "meeting has no start or a non-positive duration",
	}))

	attempts, err := db.ListAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	invalid := attempts[0]
	assert.Equal(t, "invalid_details", invalid.Outcome)
	assert.Equal(t, "primary", invalid.CalendarID)
	assert.Nil(t, invalid.StartTime)
	assert.Empty(t, invalid.Attendees)
	assert.Contains(t, invalid.ErrorDetail, "non-positive duration")

	success := attempts[1]
	assert.NotEmpty(t, success.ID)
	assert.Equal(t, "success", success.Outcome)
	assert.Equal(t, "team@example.com", success.CalendarID)
	assert.Equal(t, "evt-1", success.EventID)
	assert.Equal(t, []string{"john@example.com"}, success.Attendees)
	require.NotNil(t, success.StartTime)
	assert.True(t, success.StartTime.Equal(start))
	require.NotNil(t, success.EndTime)
	assert.True(t, success.EndTime.Equal(start.Add(time.Hour)))
	assert.Nil(t, success.CancelledAt)
	assert.NotEqual(t, invalid.ID, success.ID)
}

func TestListAttemptsLimit(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordAttempt(ctx, booking.Attempt{Outcome: booking.OutcomeConflict}))
	}

	attempts, err := db.ListAttempts(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, attempts, 3)

	attempts, err = db.ListAttempts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 5)
}

func TestMarkCancelled(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordAttempt(ctx, booking.Attempt{Outcome: booking.OutcomeSuccess, EventID: "evt-1"}))
	require.NoError(t, db.RecordAttempt(ctx, booking.Attempt{Outcome: booking.OutcomeSuccess, EventID: "evt-2"}))

	require.NoError(t, db.MarkCancelled(ctx, "evt-1"))

	attempts, err := db.ListAttempts(ctx, 10)
	require.NoError(t, err)
	for _, a := range attempts {
		if a.EventID == "evt-1" {
			assert.NotNil(t, a.CancelledAt)
		} else {
			assert.Nil(t, a.CancelledAt)
		}
	}

	// Unknown ids are not an error.
	assert.NoError(t, db.MarkCancelled(ctx, "missing"))
}

func TestRejectsUnknownOutcome(t *testing.T) {
	db := NewTestDB(t)

	err := db.RecordAttempt(context.Background(), booking.Attempt{Outcome: booking.Outcome("maybe")})
	assert.Error(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := NewTestDB(t)

	require.NoError(t, migrations.RunMigrations(db.DB))

	exists, err := migrations.ColumnExists(db.DB, "booking_attempts", "cancelled_at")
	require.NoError(t, err)
	assert.True(t, exists)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}
