package booking

import (
	"context"
	"time"

	"github.com/omriShneor/tailortalk/internal/gcal"
)

// CalendarBackend defines the calendar operations the booking flow needs.
// It is implemented by *gcal.Client and by testutil.FakeCalendar.
type CalendarBackend interface {
	FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]gcal.BusyInterval, error)
	CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.CreatedEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListUpcoming(ctx context.Context, calendarID string, max int) ([]gcal.EventSummary, error)
}

// Attempt is one terminal booking outcome, as handed to a Recorder.
type Attempt struct {
	CalendarID string
	Summary    string
	Start      time.Time
	End        time.Time
	Attendees  []string
	Outcome    Outcome
	EventID    string
	// Detail holds the backend error text. It is for operators only.
	Detail string
}

// Recorder persists booking attempts. Implemented by *database.DB.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
	MarkCancelled(ctx context.Context, eventID string) error
}

// Notifier is told about successful bookings.
type Notifier interface {
	NotifyBooked(ctx context.Context, result *Result) error
}

var _ CalendarBackend = (*gcal.Client)(nil)
