package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeCalendar_BusyIncludesCreatedEvents(t *testing.T) {
	cal := NewFakeCalendar()
	ctx := context.Background()
	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)

	cal.AddBusy(start.Add(-time.Hour), start)
	busy, err := cal.FreeBusy(ctx, "primary", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, busy, "touching intervals do not overlap")

	created, err := cal.CreateEvent(ctx, "primary", gcal.EventInput{
		Summary:   "Meeting",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Contains(t, created.Link, created.ID)

	busy, err = cal.FreeBusy(ctx, "primary", start.Add(30*time.Minute), start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, busy, 1)
	assert.Equal(t, 2, cal.FreeBusyCalls())
	assert.Equal(t, 1, cal.CreateCalls())
}

func TestFakeCalendar_DeleteUnknown(t *testing.T) {
	cal := NewFakeCalendar()

	err := cal.DeleteEvent(context.Background(), "primary", "missing")
	assert.True(t, gcal.IsEventNotFound(err))
}

func TestFakeCalendar_DelayMapsDeadlineToTimeout(t *testing.T) {
	cal := NewFakeCalendar()
	cal.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := cal.FreeBusy(ctx, "primary", time.Now(), time.Now().Add(time.Hour))
	assert.True(t, errors.Is(err, gcal.ErrTimeout))

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = cal.ListUpcoming(ctx, "primary", 5)
	assert.True(t, errors.Is(err, gcal.ErrUnavailable))
}

func TestFakeCalendar_Reset(t *testing.T) {
	cal := NewFakeCalendar()
	ctx := context.Background()
	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)

	cal.AddBusy(start, start.Add(time.Hour))
	_, err := cal.CreateEvent(ctx, "primary", gcal.EventInput{StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)
	cal.SetListError(errors.New("boom"))

	cal.Reset()

	assert.Empty(t, cal.Events())
	assert.Equal(t, 0, cal.CreateCalls())
	events, err := cal.ListUpcoming(ctx, "primary", 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}
