package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/omriShneor/tailortalk/internal/timeutil"
)

var (
	// ErrNoDateTime means the text has no usable date and time of day.
	ErrNoDateTime = errors.New("no date and time found")
	// ErrAmbiguousTime means the wall time is skipped or repeated in the zone.
	ErrAmbiguousTime = errors.New("ambiguous local time")
)

// civilDate is a calendar date without a zone.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	return civilDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d civilDate) addDays(n int) civilDate {
	return dateOf(time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC))
}

func (d civilDate) weekday() time.Weekday {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Weekday()
}

// validDate reports whether y-m-d names a real calendar day.
func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Month() == month && t.Day() == day
}

// clock is a time of day.
type clock struct {
	hour   int
	minute int
}

// dateRule extracts a date from lower-cased text relative to today.
type dateRule struct {
	name  string
	match func(text string, today civilDate) (civilDate, bool)
}

// timeRule extracts a time of day from lower-cased text.
type timeRule struct {
	name  string
	match func(text string) (clock, bool)
}

// dateRules are evaluated in order; the first match wins.
var dateRules = []dateRule{
	{name: "absolute", match: matchAbsoluteDate},
	{name: "weekday", match: matchWeekday},
	{name: "relative", match: matchRelativeDate},
	{name: "fuzzy", match: matchFuzzyDate},
}

// timeRules are evaluated in order; the first match wins. The 12-hour rule
// comes first so "3:30 pm" is never read as 03:30.
var timeRules = []timeRule{
	{name: "meridiem", match: matchMeridiemTime},
	{name: "24h", match: match24hTime},
	{name: "named", match: matchNamedTime},
}

var (
	absoluteDateRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	weekdayRe      = regexp.MustCompile(`\b(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	inDaysRe       = regexp.MustCompile(`\bin\s+(\d{1,3})\s+(days?|weeks?)\b`)
	meridiemRe     = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)(?:[^a-z]|$)`)
	clock24Re      = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	namedTimeRe    = regexp.MustCompile(`\b(noon|midnight)\b`)
	monthDayRe     = regexp.MustCompile(`\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	dayMonthRe     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthNames + `(?:,?\s+(\d{4})\b)?`)
)

const monthNames = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b`

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

// ResolveDateTime finds a date and a time of day in text, interprets them as a
// wall time in loc and returns the instant in UTC. now anchors relative dates.
func ResolveDateTime(text string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	lower := strings.ToLower(text)
	today := dateOf(now.In(loc))

	tod, hasTime := resolveClock(lower)

	date, hasDate := resolveDate(lower, today)
	if !hasDate {
		if !hasTime {
			return time.Time{}, ErrNoDateTime
		}
		// A bare time of day is read against today, like a free-form parse would.
		date = today
	}
	if !hasTime {
		return time.Time{}, fmt.Errorf("date %04d-%02d-%02d has no time of day: %w", date.year, date.month, date.day, ErrNoDateTime)
	}

	instant, err := timeutil.Localize(date.year, date.month, date.day, tod.hour, tod.minute, loc)
	if err != nil {
		if errors.Is(err, timeutil.ErrNonexistentTime) || errors.Is(err, timeutil.ErrAmbiguousTime) {
			return time.Time{}, fmt.Errorf("%w: %v", ErrAmbiguousTime, err)
		}
		return time.Time{}, err
	}
	return instant, nil
}

func resolveDate(lower string, today civilDate) (civilDate, bool) {
	for _, rule := range dateRules {
		if d, ok := rule.match(lower, today); ok {
			return d, true
		}
	}
	return civilDate{}, false
}

func resolveClock(lower string) (clock, bool) {
	for _, rule := range timeRules {
		if c, ok := rule.match(lower); ok {
			return c, true
		}
	}
	return clock{}, false
}

func matchAbsoluteDate(text string, _ civilDate) (civilDate, bool) {
	for _, m := range absoluteDateRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validDate(year, time.Month(month), day) {
			return civilDate{year: year, month: time.Month(month), day: day}, true
		}
	}
	return civilDate{}, false
}

// matchWeekday never resolves a named weekday to today: the offset wraps to
// the same weekday next week. "next" does not add a further week.
func matchWeekday(text string, today civilDate) (civilDate, bool) {
	m := weekdayRe.FindStringSubmatch(text)
	if m == nil {
		return civilDate{}, false
	}
	target := weekdays[m[2]]
	offset := (int(target) - int(today.weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return today.addDays(offset), true
}

func matchRelativeDate(text string, today civilDate) (civilDate, bool) {
	switch {
	case strings.Contains(text, "day after tomorrow"):
		return today.addDays(2), true
	case strings.Contains(text, "tomorrow"):
		return today.addDays(1), true
	case containsWord(text, "today") || containsWord(text, "tonight"):
		return today, true
	}

	if m := inDaysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return today.addDays(n), true
	}
	return civilDate{}, false
}

// matchFuzzyDate picks up month-name dates such as "January 15", "15th of Jan"
// or "Jan 15, 2026". Without a year the next occurrence on or after today is used.
func matchFuzzyDate(text string, today civilDate) (civilDate, bool) {
	var monthName, dayStr, yearStr string
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		monthName, dayStr, yearStr = m[1], m[2], m[3]
	} else if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		dayStr, monthName, yearStr = m[1], m[2], m[3]
	} else {
		return civilDate{}, false
	}

	month := months[monthName[:3]]
	day, _ := strconv.Atoi(dayStr)

	if yearStr != "" {
		year, _ := strconv.Atoi(yearStr)
		if !validDate(year, month, day) {
			return civilDate{}, false
		}
		return civilDate{year: year, month: month, day: day}, true
	}

	for year := today.year; year <= today.year+4; year++ {
		if !validDate(year, month, day) {
			continue
		}
		candidate := civilDate{year: year, month: month, day: day}
		if !candidate.before(today) {
			return candidate, true
		}
	}
	return civilDate{}, false
}

func (d civilDate) before(other civilDate) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func matchMeridiemTime(text string) (clock, bool) {
	for _, m := range meridiemRe.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			continue
		}
		pm := strings.HasPrefix(m[3], "p")
		if pm && hour < 12 {
			hour += 12
		} else if !pm && hour == 12 {
			hour = 0
		}
		return clock{hour: hour, minute: minute}, true
	}
	return clock{}, false
}

func match24hTime(text string) (clock, bool) {
	for _, m := range clock24Re.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			continue
		}
		return clock{hour: hour, minute: minute}, true
	}
	return clock{}, false
}

func matchNamedTime(text string) (clock, bool) {
	m := namedTimeRe.FindStringSubmatch(text)
	if m == nil {
		return clock{}, false
	}
	if m[1] == "noon" {
		return clock{hour: 12}, true
	}
	return clock{hour: 0}, true
}

func containsWord(text, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if field == word {
			return true
		}
	}
	return false
}
