package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/timeutil"
)

// Config configures an Orchestrator. Only Backend is required.
type Config struct {
	Backend    CalendarBackend
	CalendarID string
	// BackendTimeout bounds every individual backend call.
	BackendTimeout time.Duration
	// RejectPastDates turns intents starting before Now into PAST_DATE.
	RejectPastDates bool
	// DisplayLocation is the zone confirmations are rendered in.
	DisplayLocation *time.Location

	Recorder Recorder
	Notifier Notifier
	Metrics  *Metrics
	Now      func() time.Time
}

// Orchestrator runs the check-then-create booking flow against one calendar.
//
// Check and create run while holding a single writer slot, so two bookings
// issued through the same Orchestrator cannot both observe "free" for the
// same interval. This does not cover other writers to the calendar (another
// process, the Google Calendar UI): the backend has no compare-and-swap, so a
// booking made elsewhere between our check and our insert can still overlap.
type Orchestrator struct {
	backend    CalendarBackend
	checker    *Checker
	calendarID string
	timeout    time.Duration
	rejectPast bool
	display    *time.Location

	recorder Recorder
	notifier Notifier
	metrics  *Metrics
	now      func() time.Time

	slot chan struct{}
}

// NewOrchestrator creates an orchestrator from cfg.
func NewOrchestrator(cfg Config) *Orchestrator {
	timeout := cfg.BackendTimeout
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	display := cfg.DisplayLocation
	if display == nil {
		display = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		backend:    cfg.Backend,
		checker:    NewChecker(cfg.Backend, cfg.CalendarID, timeout),
		calendarID: cfg.CalendarID,
		timeout:    timeout,
		rejectPast: cfg.RejectPastDates,
		display:    display,
		recorder:   cfg.Recorder,
		notifier:   cfg.Notifier,
		metrics:    cfg.Metrics,
		now:        now,
		slot:       make(chan struct{}, 1),
	}
}

// Now returns the orchestrator's current instant.
func (o *Orchestrator) Now() time.Time {
	return o.now()
}

// DisplayLocation returns the zone results are rendered in.
func (o *Orchestrator) DisplayLocation() *time.Location {
	return o.display
}

// Book validates mi, checks availability and creates the event when the
// interval is free. It always returns a terminal Result.
func (o *Orchestrator) Book(ctx context.Context, mi *intent.MeetingIntent) *Result {
	res := &Result{Intent: mi}

	if mi == nil || mi.Start.IsZero() || mi.Duration <= 0 {
		res.Outcome = OutcomeInvalid
		res.Err = errors.New("meeting has no start or a non-positive duration")
		return o.finish(ctx, res)
	}

	start := mi.Start
	end := mi.Start.Add(mi.Duration)
	res.Display = timeutil.FormatSpan(start, end, o.display)

	if o.rejectPast && start.Before(o.now()) {
		res.Outcome = OutcomePastDate
		return o.finish(ctx, res)
	}

	release, err := o.acquire(ctx)
	if err != nil {
		res.Outcome = OutcomeUnavailable
		res.Err = err
		return o.finish(ctx, res)
	}
	defer release()

	verdict, err := o.CheckAvailability(ctx, start, end)
	switch verdict {
	case VerdictBusy:
		res.Outcome = OutcomeConflict
		return o.finish(ctx, res)
	case VerdictUnavailable:
		res.Outcome = OutcomeUnavailable
		res.Err = err
		return o.finish(ctx, res)
	}

	created, err := o.createEvent(ctx, mi, start, end)
	if err != nil {
		res.Outcome = OutcomeBackendError
		res.Err = err
		return o.finish(ctx, res)
	}

	res.Outcome = OutcomeSuccess
	res.EventID = created.ID
	res.Link = created.Link
	return o.finish(ctx, res)
}

// CheckAvailability reports whether [start, end) is free on the calendar.
func (o *Orchestrator) CheckAvailability(ctx context.Context, start, end time.Time) (Verdict, error) {
	started := time.Now()
	verdict, err := o.checker.Check(ctx, start, end)
	o.metrics.observeBackend("freebusy", started, err)
	return verdict, err
}

// Upcoming lists up to max upcoming events.
func (o *Orchestrator) Upcoming(ctx context.Context, max int) ([]gcal.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	events, err := o.backend.ListUpcoming(ctx, o.calendarID, max)
	o.metrics.observeBackend("list", started, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

// Cancel deletes an event. It shares the writer slot with Book.
func (o *Orchestrator) Cancel(ctx context.Context, eventID string) error {
	release, err := o.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	err = o.backend.DeleteEvent(ctx, o.calendarID, eventID)
	o.metrics.observeBackend("delete", started, err)
	if err != nil {
		fmt.Printf("Booking: failed to cancel event %s: %v\n", eventID, err)
		return fmt.Errorf("failed to cancel event %s: %w", eventID, err)
	}

	fmt.Printf("Booking: cancelled event %s\n", eventID)
	if o.recorder != nil {
		if err := o.recorder.MarkCancelled(ctx, eventID); err != nil {
			fmt.Printf("Booking: failed to record cancellation of %s: %v\n", eventID, err)
		}
	}
	return nil
}

func (o *Orchestrator) acquire(ctx context.Context) (func(), error) {
	waitStart := time.Now()
	select {
	case o.slot <- struct{}{}:
		o.metrics.observeWait(waitStart)
		return func() { <-o.slot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for booking slot: %w", ctx.Err())
	}
}

func (o *Orchestrator) createEvent(ctx context.Context, mi *intent.MeetingIntent, start, end time.Time) (*gcal.CreatedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	input := gcal.EventInput{
		Summary:   mi.Summary,
		StartTime: start.In(o.display),
		EndTime:   end.In(o.display),
		TimeZone:  o.display.String(),
		Attendees: mi.Attendees,
	}
	if mi.Agenda != nil {
		input.Description = *mi.Agenda
	}
	if input.Summary == "" {
		input.Summary = intent.DefaultSummary
	}

	started := time.Now()
	created, err := o.backend.CreateEvent(ctx, o.calendarID, input)
	o.metrics.observeBackend("create", started, err)
	return created, err
}

// finish logs, counts, records and notifies a terminal result.
func (o *Orchestrator) finish(ctx context.Context, res *Result) *Result {
	if res.Err != nil {
		fmt.Printf("Booking: %s (%s): %v\n", res.Outcome, res.Display, res.Err)
	} else {
		fmt.Printf("Booking: %s (%s)\n", res.Outcome, res.Display)
	}

	o.metrics.observeOutcome(res.Outcome)

	if o.recorder != nil {
		if err := o.recorder.RecordAttempt(ctx, o.attemptFor(res)); err != nil {
			fmt.Printf("Booking: failed to record attempt: %v\n", err)
		}
	}

	if res.Success() && o.notifier != nil {
		if err := o.notifier.NotifyBooked(ctx, res); err != nil {
			fmt.Printf("Booking: failed to send confirmation for %s: %v\n", res.EventID, err)
		}
	}

	return res
}

func (o *Orchestrator) attemptFor(res *Result) Attempt {
	attempt := Attempt{
		CalendarID: o.calendarID,
		Outcome:    res.Outcome,
		EventID:    res.EventID,
	}
	if mi := res.Intent; mi != nil {
		attempt.Summary = mi.Summary
		attempt.Start = mi.Start
		attempt.End = mi.Start.Add(mi.Duration)
		attempt.Attendees = mi.Attendees
	}
	if res.Err != nil {
		attempt.Detail = res.Err.Error()
	}
	return attempt
}

func isTimeout(err error) bool {
	return errors.Is(err, gcal.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
