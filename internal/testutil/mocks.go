package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omriShneor/tailortalk/internal/gcal"
)

// FakeCalendar is an in-memory calendar backend for tests and the local test
// server. Busy time is the union of seeded busy intervals and created events.
type FakeCalendar struct {
	mu     sync.Mutex
	events []FakeEvent
	busy   []gcal.BusyInterval
	delay  time.Duration

	freeBusyErr error
	createErr   error
	deleteErr   error
	listErr     error

	freeBusyCalls int
	createCalls   int
	deleteCalls   int
}

// FakeEvent is an event stored by FakeCalendar.
type FakeEvent struct {
	ID         string
	CalendarID string
	Input      gcal.EventInput
	Link       string
}

// NewFakeCalendar creates an empty fake calendar.
func NewFakeCalendar() *FakeCalendar {
	return &FakeCalendar{}
}

// AddBusy marks [start, end) as busy.
func (f *FakeCalendar) AddBusy(start, end time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = append(f.busy, gcal.BusyInterval{Start: start.UTC(), End: end.UTC()})
}

// SetDelay makes every call wait d, or until the context is done.
func (f *FakeCalendar) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// SetFreeBusyError makes FreeBusy fail with err.
func (f *FakeCalendar) SetFreeBusyError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freeBusyErr = err
}

// SetCreateError makes CreateEvent fail with err.
func (f *FakeCalendar) SetCreateError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

// SetDeleteError makes DeleteEvent fail with err.
func (f *FakeCalendar) SetDeleteError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

// SetListError makes ListUpcoming fail with err.
func (f *FakeCalendar) SetListError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// FreeBusy implements booking.CalendarBackend.
func (f *FakeCalendar) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]gcal.BusyInterval, error) {
	f.mu.Lock()
	f.freeBusyCalls++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.freeBusyErr != nil {
		return nil, f.freeBusyErr
	}

	var result []gcal.BusyInterval
	for _, b := range f.busy {
		if b.Overlaps(start, end) {
			result = append(result, b)
		}
	}
	for _, e := range f.events {
		b := gcal.BusyInterval{Start: e.Input.StartTime.UTC(), End: e.Input.EndTime.UTC()}
		if b.Overlaps(start, end) {
			result = append(result, b)
		}
	}
	return result, nil
}

// CreateEvent implements booking.CalendarBackend.
func (f *FakeCalendar) CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.CreatedEvent, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}

	id := uuid.NewString()
	event := FakeEvent{
		ID:         id,
		CalendarID: calendarID,
		Input:      input,
		Link:       "https://calendar.google.com/calendar/event?eid=" + id,
	}
	f.events = append(f.events, event)
	return &gcal.CreatedEvent{ID: id, Link: event.Link}, nil
}

// DeleteEvent implements booking.CalendarBackend.
func (f *FakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}

	for i, e := range f.events {
		if e.ID == eventID {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", eventID, gcal.ErrEventNotFound)
}

// ListUpcoming implements booking.CalendarBackend. Events are returned in
// start order regardless of the current time.
func (f *FakeCalendar) ListUpcoming(ctx context.Context, calendarID string, max int) ([]gcal.EventSummary, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	result := make([]gcal.EventSummary, 0, len(f.events))
	for _, e := range f.events {
		result = append(result, gcal.EventSummary{
			ID:        e.ID,
			Summary:   e.Input.Summary,
			StartTime: e.Input.StartTime,
			EndTime:   e.Input.EndTime,
			Attendees: e.Input.Attendees,
			Link:      e.Link,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	if max > 0 && len(result) > max {
		result = result[:max]
	}
	return result, nil
}

// Reset drops all events, busy intervals, injected errors and counters.
func (f *FakeCalendar) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
	f.busy = nil
	f.delay = 0
	f.freeBusyErr, f.createErr, f.deleteErr, f.listErr = nil, nil, nil, nil
	f.freeBusyCalls, f.createCalls, f.deleteCalls = 0, 0, 0
}

// Events returns a copy of the created events.
func (f *FakeCalendar) Events() []FakeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeEvent{}, f.events...)
}

// FreeBusyCalls returns how many times FreeBusy was called.
func (f *FakeCalendar) FreeBusyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.freeBusyCalls
}

// CreateCalls returns how many times CreateEvent was called.
func (f *FakeCalendar) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// DeleteCalls returns how many times DeleteEvent was called.
func (f *FakeCalendar) DeleteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

// wait applies the configured delay. A context that ends first is reported
// the way the Google client reports it.
func (f *FakeCalendar) wait(ctx context.Context) error {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", gcal.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", gcal.ErrUnavailable, err)
	}
}
