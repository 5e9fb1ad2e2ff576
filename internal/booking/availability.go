package booking

import (
	"context"
	"fmt"
	"time"
)

// Verdict is the outcome of an availability check.
type Verdict int

const (
	// VerdictUnavailable means availability could not be determined. It is
	// the zero value so an unset verdict never reads as free.
	VerdictUnavailable Verdict = iota
	VerdictFree
	VerdictBusy
)

func (v Verdict) String() string {
	switch v {
	case VerdictFree:
		return "free"
	case VerdictBusy:
		return "busy"
	default:
		return "unavailable"
	}
}

// DefaultBackendTimeout bounds each call to the calendar backend.
const DefaultBackendTimeout = 10 * time.Second

// Checker answers whether a calendar is free over an interval.
type Checker struct {
	backend    CalendarBackend
	calendarID string
	timeout    time.Duration
}

// NewChecker creates a checker for calendarID. A non-positive timeout uses
// DefaultBackendTimeout.
func NewChecker(backend CalendarBackend, calendarID string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &Checker{backend: backend, calendarID: calendarID, timeout: timeout}
}

// Check queries busy intervals for exactly [start, end). Any backend failure
// yields VerdictUnavailable together with the cause.
func (c *Checker) Check(ctx context.Context, start, end time.Time) (Verdict, error) {
	if !end.After(start) {
		return VerdictUnavailable, fmt.Errorf("invalid interval: end %s is not after start %s", end, start)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	busy, err := c.backend.FreeBusy(ctx, c.calendarID, start, end)
	if err != nil {
		return VerdictUnavailable, err
	}

	for _, b := range busy {
		if b.Overlaps(start, end) {
			return VerdictBusy, nil
		}
	}
	return VerdictFree, nil
}
