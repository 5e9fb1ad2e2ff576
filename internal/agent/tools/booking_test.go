package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/agent"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTools(t *testing.T) (*BookingTools, *testutil.FakeCalendar, *time.Location) {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cal := testutil.NewFakeCalendar()
	orch := booking.NewOrchestrator(booking.Config{
		Backend:         cal,
		CalendarID:      "primary",
		BackendTimeout:  time.Second,
		RejectPastDates: true,
		DisplayLocation: kolkata,
		Now: func() time.Time {
			return time.Date(2025, time.January, 10, 9, 0, 0, 0, kolkata)
		},
	})
	return NewBookingTools(orch, intent.NewParser(kolkata)), cal, kolkata
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func TestHandleBookMeeting(t *testing.T) {
	t.Run("free-text request", func(t *testing.T) {
		tools, cal, kolkata := newTestTools(t)

		out, err := tools.HandleBookMeeting(context.Background(), map[string]any{
			"request": "tomorrow at 3 PM with john@example.com for 1 hour",
		})
		require.NoError(t, err)

		result := decode(t, out)
		assert.Equal(t, "success", result["status"])
		assert.Equal(t, true, result["success"])
		assert.NotEmpty(t, result["event_id"])
		assert.Contains(t, result["message"], "Meeting booked")

		events := cal.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "15:00", events[0].Input.StartTime.In(kolkata).Format("15:04"))
		assert.Equal(t, []string{"john@example.com"}, events[0].Input.Attendees)
	})

	t.Run("structured input", func(t *testing.T) {
		tools, cal, kolkata := newTestTools(t)

		out, err := tools.HandleBookMeeting(context.Background(), map[string]any{
			"start":            "2025-01-11T15:00",
			"duration_minutes": float64(60),
			"attendees":        []any{"john@example.com", "not-an-address", "JOHN@example.com"},
			"agenda":           "planning",
		})
		require.NoError(t, err)
		assert.Equal(t, "success", decode(t, out)["status"])

		events := cal.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "planning", events[0].Input.Summary)
		assert.Equal(t, "planning", events[0].Input.Description)
		assert.Equal(t, []string{"john@example.com"}, events[0].Input.Attendees)
		assert.True(t, time.Date(2025, time.January, 11, 16, 0, 0, 0, kolkata).Equal(events[0].Input.EndTime))
	})

	t.Run("busy slot is a conflict", func(t *testing.T) {
		tools, cal, kolkata := newTestTools(t)
		cal.AddBusy(
			time.Date(2025, time.January, 11, 15, 0, 0, 0, kolkata),
			time.Date(2025, time.January, 11, 15, 30, 0, 0, kolkata),
		)

		out, err := tools.HandleBookMeeting(context.Background(), map[string]any{"start": "2025-01-11T15:00"})
		require.NoError(t, err)

		result := decode(t, out)
		assert.Equal(t, "conflict", result["status"])
		assert.Equal(t, false, result["success"])
		assert.Equal(t, 0, cal.CreateCalls())
	})

	t.Run("request without time", func(t *testing.T) {
		tools, cal, _ := newTestTools(t)

		_, err := tools.HandleBookMeeting(context.Background(), map[string]any{"request": "a meeting with jane@x.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "date and time")
		assert.Equal(t, 0, cal.FreeBusyCalls())
	})

	t.Run("missing request and start", func(t *testing.T) {
		tools, _, _ := newTestTools(t)

		_, err := tools.HandleBookMeeting(context.Background(), map[string]any{})
		assert.EqualError(t, err, "either request or start is required")
	})

	t.Run("unparseable start", func(t *testing.T) {
		tools, _, _ := newTestTools(t)

		_, err := tools.HandleBookMeeting(context.Background(), map[string]any{"start": "next tuesday"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date-time")
	})
}

func TestHandleCheckAvailability(t *testing.T) {
	tools, cal, kolkata := newTestTools(t)
	cal.AddBusy(
		time.Date(2025, time.January, 11, 10, 0, 0, 0, kolkata),
		time.Date(2025, time.January, 11, 11, 0, 0, 0, kolkata),
	)

	out, err := tools.HandleCheckAvailability(context.Background(), map[string]any{"start": "2025-01-11T09:00"})
	require.NoError(t, err)
	result := decode(t, out)
	assert.Equal(t, "free", result["status"])
	assert.Equal(t, false, result["busy"])

	out, err = tools.HandleCheckAvailability(context.Background(), map[string]any{
		"start": "2025-01-11T09:30",
		"end":   "2025-01-11T10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "busy", decode(t, out)["status"])

	cal.SetFreeBusyError(fmt.Errorf("freebusy: %w", gcal.ErrUnavailable))
	out, err = tools.HandleCheckAvailability(context.Background(), map[string]any{"start": "2025-01-11T09:00"})
	require.NoError(t, err)
	result = decode(t, out)
	assert.Equal(t, "unavailable", result["status"])
	assert.Contains(t, result["message"], "could not be verified")

	_, err = tools.HandleCheckAvailability(context.Background(), map[string]any{
		"start": "2025-01-11T09:00",
		"end":   "2025-01-11T08:00",
	})
	assert.EqualError(t, err, "end must be after start")

	_, err = tools.HandleCheckAvailability(context.Background(), map[string]any{})
	assert.EqualError(t, err, "start is required")
}

func TestListAndCancel(t *testing.T) {
	tools, cal, _ := newTestTools(t)
	ctx := context.Background()

	for _, start := range []string{"2025-01-12T10:00", "2025-01-11T10:00"} {
		_, err := tools.HandleBookMeeting(ctx, map[string]any{"start": start})
		require.NoError(t, err)
	}

	out, err := tools.HandleListUpcomingMeetings(ctx, map[string]any{"max_results": float64(1)})
	require.NoError(t, err)
	result := decode(t, out)
	assert.Equal(t, float64(1), result["count"])
	assert.Equal(t, "Asia/Kolkata", result["timezone"])
	first := result["events"].([]any)[0].(map[string]any)
	id := first["id"].(string)

	out, err = tools.HandleCancelMeeting(ctx, map[string]any{"event_id": id})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", decode(t, out)["status"])
	assert.Len(t, cal.Events(), 1)

	_, err = tools.HandleCancelMeeting(ctx, map[string]any{"event_id": id})
	assert.EqualError(t, err, fmt.Sprintf("no meeting with id %s exists", id))

	_, err = tools.HandleCancelMeeting(ctx, map[string]any{})
	assert.EqualError(t, err, "event_id is required")
}

func TestListUpcomingMeetings_Empty(t *testing.T) {
	tools, _, _ := newTestTools(t)

	out, err := tools.HandleListUpcomingMeetings(context.Background(), map[string]any{})
	require.NoError(t, err)
	result := decode(t, out)
	assert.Equal(t, float64(0), result["count"])
	assert.Equal(t, []any{}, result["events"])
}

func TestRegisterAll(t *testing.T) {
	tools, _, _ := newTestTools(t)
	a := agent.NewAgent(agent.AgentConfig{})

	tools.RegisterAll(a)

	var names []string
	for _, tool := range a.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"book_meeting", "check_availability", "list_upcoming_meetings", "cancel_meeting"}, names)
}
