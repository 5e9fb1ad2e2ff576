package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/tailortalk/internal/agent"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/timeutil"
)

const defaultDurationMinutes = 30

// BookMeetingTool books a meeting through the booking orchestrator
var BookMeetingTool = agent.Tool{
	Name: "book_meeting",
	Description: `Books a meeting on the user's calendar after checking that the slot is free.
Either pass the user's own words in "request" (for example "tomorrow at 3 PM with john@example.com
for 1 hour"), or pass a structured "start" local date-time with optional duration, summary,
attendees and agenda. Nothing is booked when the slot is busy, in the past, or the calendar
cannot be reached. Relay the returned message to the user.`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"request":          agent.PropertyString("Free-text booking request in the user's words. Optional if start is given."),
		"start":            agent.PropertyString("Start in local time, YYYY-MM-DDTHH:MM, or RFC3339 with an offset. Optional if request is given."),
		"duration_minutes": agent.PropertyInt("Length of the meeting in minutes. Defaults to 30."),
		"summary":          agent.PropertyString("Meeting title. Defaults to the agenda or 'Meeting'."),
		"attendees":        agent.PropertyArray("E-mail addresses to invite", map[string]any{"type": "string"}),
		"agenda":           agent.PropertyString("Agenda text for the invite description. Optional."),
	}, nil),
}

// CheckAvailabilityTool checks whether an interval is free
var CheckAvailabilityTool = agent.Tool{
	Name: "check_availability",
	Description: `Checks whether the calendar is free for an interval without booking anything.
Pass "start" as a local date-time (YYYY-MM-DDTHH:MM) or RFC3339, and either "end" or
"duration_minutes". The status is "free", "busy" or "unavailable"; unavailable means the
calendar could not be checked and must not be reported as free.`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"start":            agent.PropertyString("Interval start, YYYY-MM-DDTHH:MM local time or RFC3339"),
		"end":              agent.PropertyString("Interval end. Optional if duration_minutes is given."),
		"duration_minutes": agent.PropertyInt("Interval length in minutes. Defaults to 30."),
	}, []string{"start"}),
}

// BookingTools binds the tool handlers to one orchestrator and parser.
type BookingTools struct {
	orch   *booking.Orchestrator
	parser *intent.Parser
}

// NewBookingTools creates the booking tool handlers.
func NewBookingTools(orch *booking.Orchestrator, parser *intent.Parser) *BookingTools {
	return &BookingTools{orch: orch, parser: parser}
}

// RegisterAll registers every booking tool on a.
func (b *BookingTools) RegisterAll(a *agent.Agent) {
	a.MustRegisterTool(BookMeetingTool, b.HandleBookMeeting)
	a.MustRegisterTool(CheckAvailabilityTool, b.HandleCheckAvailability)
	a.MustRegisterTool(ListUpcomingMeetingsTool, b.HandleListUpcomingMeetings)
	a.MustRegisterTool(CancelMeetingTool, b.HandleCancelMeeting)
}

// HandleBookMeeting runs the booking flow for a free-text or structured request
func (b *BookingTools) HandleBookMeeting(ctx context.Context, input map[string]any) (string, error) {
	var mi *intent.MeetingIntent
	var err error

	if request, ok := input["request"].(string); ok && strings.TrimSpace(request) != "" {
		mi, err = b.parser.Parse(request, b.orch.Now())
		if err != nil {
			if errors.Is(err, intent.ErrAmbiguousTime) {
				return "", fmt.Errorf("the requested time is ambiguous in %s, ask the user to restate it", b.parser.Location())
			}
			return "", fmt.Errorf("the request has no date and time, ask the user for both")
		}
	} else {
		mi, err = b.structuredIntent(input)
		if err != nil {
			return "", err
		}
	}

	res := b.orch.Book(ctx, mi)

	result, err := json.Marshal(map[string]any{
		"status":     string(res.Outcome),
		"success":    res.Success(),
		"message":    res.Message(),
		"event_id":   res.EventID,
		"link":       res.Link,
		"error_code": res.ErrorCode(),
		"details":    mi.Details(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(result), nil
}

func (b *BookingTools) structuredIntent(input map[string]any) (*intent.MeetingIntent, error) {
	startText, _ := input["start"].(string)
	if startText == "" {
		return nil, fmt.Errorf("either request or start is required")
	}

	start, err := b.parseTime(startText)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes(input)) * time.Minute

	var agenda *string
	if v, ok := input["agenda"].(string); ok && strings.TrimSpace(v) != "" {
		text := strings.TrimSpace(v)
		agenda = &text
	}

	summary, _ := input["summary"].(string)
	summary = strings.TrimSpace(summary)
	if summary == "" && agenda != nil {
		summary = *agenda
	}
	if summary == "" {
		summary = intent.DefaultSummary
	}

	var addresses []string
	if raw, ok := input["attendees"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				addresses = append(addresses, s)
			}
		}
	}

	return &intent.MeetingIntent{
		Summary:   summary,
		Start:     start,
		End:       start.Add(duration),
		Duration:  duration,
		Attendees: intent.ExtractAttendees(strings.Join(addresses, " ")),
		Agenda:    agenda,
		Location:  b.parser.Location(),
	}, nil
}

// HandleCheckAvailability reports free, busy or unavailable for an interval
func (b *BookingTools) HandleCheckAvailability(ctx context.Context, input map[string]any) (string, error) {
	startText, _ := input["start"].(string)
	if startText == "" {
		return "", fmt.Errorf("start is required")
	}
	start, err := b.parseTime(startText)
	if err != nil {
		return "", err
	}

	end := start.Add(time.Duration(durationMinutes(input)) * time.Minute)
	if endText, ok := input["end"].(string); ok && endText != "" {
		end, err = b.parseTime(endText)
		if err != nil {
			return "", err
		}
	}
	if !end.After(start) {
		return "", fmt.Errorf("end must be after start")
	}

	verdict, err := b.orch.CheckAvailability(ctx, start, end)
	display := timeutil.FormatSpan(start, end, b.orch.DisplayLocation())

	message := fmt.Sprintf("%s is %s.", display, verdict)
	if err != nil {
		fmt.Printf("Tools: availability check failed: %v\n", err)
		message = fmt.Sprintf("Availability for %s could not be verified right now.", display)
	}

	result, err := json.Marshal(map[string]any{
		"status":  verdict.String(),
		"busy":    verdict == booking.VerdictBusy,
		"message": message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(result), nil
}

func (b *BookingTools) parseTime(value string) (time.Time, error) {
	t, _, err := timeutil.ParseDateTime(value, b.parser.Location().String())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q: %w", value, err)
	}
	return t.UTC(), nil
}

// durationMinutes reads duration_minutes, defaulting to 30. JSON numbers
// arrive as float64.
func durationMinutes(input map[string]any) int {
	if v, ok := input["duration_minutes"].(float64); ok && v > 0 {
		return int(v)
	}
	return defaultDurationMinutes
}
