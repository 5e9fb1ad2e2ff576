package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// BusyInterval is a half-open [Start, End) span the calendar owner is busy.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the interval intersects [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

// FreeBusy returns the busy intervals of calendarID within [start, end).
// A response without an entry for the calendar, or with per-calendar errors,
// is reported as ErrUnavailable instead of an empty (free) result.
func (c *Client) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]BusyInterval, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: invalid range: end is not after start", ErrRejected)
	}
	calendarID = calendarOrDefault(calendarID)

	req := &calendar.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	resp, err := c.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, classify("failed to query free/busy", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("%w: free/busy response has no entry for %s", ErrUnavailable, calendarID)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("%w: free/busy error for %s: %s", ErrUnavailable, calendarID, cal.Errors[0].Reason)
	}

	busy := make([]BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		if period == nil {
			continue
		}
		bStart, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed busy start %q", ErrUnavailable, period.Start)
		}
		bEnd, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed busy end %q", ErrUnavailable, period.End)
		}
		busy = append(busy, BusyInterval{Start: bStart.UTC(), End: bEnd.UTC()})
	}

	return busy, nil
}
