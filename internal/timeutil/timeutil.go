package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimezone is the zone used when none is configured.
const DefaultTimezone = "Asia/Kolkata"

var (
	// ErrNonexistentTime is returned for wall times skipped by a forward DST transition.
	ErrNonexistentTime = errors.New("local time does not exist in zone")
	// ErrAmbiguousTime is returned for wall times repeated by a backward DST transition.
	ErrAmbiguousTime = errors.New("local time is ambiguous in zone")
)

// ResolveLocation returns the named location, falling back to UTC.
// The bool result reports whether the fallback was used.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return time.UTC, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC, true
	}
	return loc, false
}

// Localize interprets a calendar date and clock time as a wall time in loc and
// returns the matching absolute instant in UTC. The offset comes from the zone
// rule in effect on that date. Wall times that fall into a DST gap or overlap
// are rejected instead of being silently shifted.
func Localize(year int, month time.Month, day, hour, minute int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	guess := time.Date(year, month, day, hour, minute, 0, 0, loc)
	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	// Any transition near the wall time shows up as different offsets a few
	// hours either side of it.
	var matches []time.Time
	for _, sample := range []time.Time{guess.Add(-3 * time.Hour), guess, guess.Add(3 * time.Hour)} {
		_, offset := sample.Zone()
		candidate := wall.Add(-time.Duration(offset) * time.Second)
		if !sameWallClock(candidate.In(loc), wall) {
			continue
		}
		if !containsInstant(matches, candidate) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return time.Time{}, fmt.Errorf("%s %s: %w", wall.Format("2006-01-02 15:04"), loc, ErrNonexistentTime)
	case 1:
		return matches[0].UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%s %s: %w", wall.Format("2006-01-02 15:04"), loc, ErrAmbiguousTime)
	}
}

func sameWallClock(t, wall time.Time) bool {
	return t.Year() == wall.Year() && t.Month() == wall.Month() && t.Day() == wall.Day() &&
		t.Hour() == wall.Hour() && t.Minute() == wall.Minute()
}

func containsInstant(list []time.Time, t time.Time) bool {
	for _, existing := range list {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

// ParseDateTime parses a datetime in either RFC3339 (with explicit offset) or local layouts in the provided timezone.
func ParseDateTime(value, timezone string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	// If timezone/offset exists, preserve it.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	loc, fallback := ResolveLocation(timezone)

	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, fallback, nil
		}
	}

	return time.Time{}, fallback, fmt.Errorf("unable to parse time: %s", value)
}

// FormatSpan renders an interval for chat replies, e.g.
// "Saturday, Jan 11 03:00 PM to 04:00 PM (Asia/Kolkata)".
func FormatSpan(start, end time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)

	endLayout := "03:04 PM"
	if s.Format("2006-01-02") != e.Format("2006-01-02") {
		endLayout = "Monday, Jan 2 03:04 PM"
	}
	return fmt.Sprintf("%s to %s (%s)", s.Format("Monday, Jan 2 03:04 PM"), e.Format(endLayout), loc)
}
