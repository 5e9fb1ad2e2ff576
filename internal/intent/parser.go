// Package intent turns a free-text booking request into a structured meeting
// intent: an absolute start instant, a duration, attendees and an agenda.
//
// Every extractor is an ordered list of rules evaluated first-match-wins, so
// the precedence between patterns is visible in one place per concern.
// Parsing is a pure function of the text, the resolution instant and the zone;
// availability and past-date checks belong to the booking package.
package intent

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSummary is used when the request names no title or agenda.
const DefaultSummary = "Meeting"

// ErrInsufficient means the text lacks a resolvable date and time.
var ErrInsufficient = errors.New("insufficient meeting details")

// MeetingIntent is the structured form of one booking request.
type MeetingIntent struct {
	Summary   string
	Start     time.Time // UTC
	End       time.Time // UTC
	Duration  time.Duration
	Attendees []string
	Agenda    *string
	// Location is the zone the wall time was read in.
	Location *time.Location
}

// LocalStart returns Start in the resolution zone.
func (m *MeetingIntent) LocalStart() time.Time {
	return m.Start.In(m.zone())
}

// LocalEnd returns End in the resolution zone.
func (m *MeetingIntent) LocalEnd() time.Time {
	return m.End.In(m.zone())
}

func (m *MeetingIntent) zone() *time.Location {
	if m.Location == nil {
		return time.UTC
	}
	return m.Location
}

// Details is the JSON form of a MeetingIntent returned to programmatic callers.
type Details struct {
	Summary         string   `json:"summary"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	DurationMinutes int      `json:"duration_minutes"`
	Participants    []string `json:"participants"`
	Agenda          *string  `json:"agenda"`
	Timezone        string   `json:"timezone"`
}

// Details converts the intent for JSON output.
func (m *MeetingIntent) Details() *Details {
	participants := m.Attendees
	if participants == nil {
		participants = []string{}
	}
	start := m.LocalStart()
	return &Details{
		Summary:         m.Summary,
		Date:            start.Format("2006-01-02"),
		Time:            start.Format("15:04"),
		Start:           start.Format(time.RFC3339),
		End:             m.LocalEnd().Format(time.RFC3339),
		DurationMinutes: int(m.Duration / time.Minute),
		Participants:    participants,
		Agenda:          m.Agenda,
		Timezone:        m.zone().String(),
	}
}

// Parser builds MeetingIntents for one configured zone.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that reads wall times in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Location returns the zone wall times are read in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse extracts a MeetingIntent from text. It returns an error wrapping
// ErrInsufficient when no date and time can be resolved, and one wrapping
// ErrAmbiguousTime when the wall time is skipped or repeated in the zone.
// Duration, attendees and agenda are optional.
func (p *Parser) Parse(text string, now time.Time) (*MeetingIntent, error) {
	start, err := ResolveDateTime(text, now, p.loc)
	if err != nil {
		if errors.Is(err, ErrNoDateTime) {
			return nil, fmt.Errorf("%w: %w", ErrInsufficient, err)
		}
		return nil, err
	}

	duration := ResolveDuration(text)
	attendees, agenda := ExtractParticipants(text)

	summary := extractTitle(text)
	if summary == "" && agenda != nil {
		summary = *agenda
	}
	if summary == "" {
		summary = DefaultSummary
	}

	return &MeetingIntent{
		Summary:   summary,
		Start:     start,
		End:       start.Add(duration),
		Duration:  duration,
		Attendees: attendees,
		Agenda:    agenda,
		Location:  p.loc,
	}, nil
}
