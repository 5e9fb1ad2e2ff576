package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	// TimeZone is the IANA zone the event is displayed in. Optional.
	TimeZone  string
	Attendees []string // Email addresses of attendees
}

// CreatedEvent identifies an event after insertion.
type CreatedEvent struct {
	ID   string
	Link string
}

// EventSummary is a compact view of an upcoming event.
type EventSummary struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Location  string    `json:"location,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	AllDay    bool      `json:"all_day"`
	Attendees []string  `json:"attendees,omitempty"`
	Link      string    `json:"link,omitempty"`
}

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, false, nil
}

// CreateEvent creates a new event in Google Calendar and returns its ID and
// HTML link. Attendees receive invitations.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*CreatedEvent, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	calendarID = calendarOrDefault(calendarID)

	// RFC3339 carries the offset; TimeZone only affects how the event is shown.
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, len(input.Attendees))
		for i, email := range input.Attendees {
			attendees[i] = &calendar.EventAttendee{Email: email}
		}
		event.Attendees = attendees
	}

	created, err := c.service.Events.Insert(calendarID, event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, classify("failed to create event", err)
	}
	if created == nil || created.Id == "" {
		return nil, fmt.Errorf("failed to create event: %w: response has no event id", ErrUnavailable)
	}

	return &CreatedEvent{ID: created.Id, Link: created.HtmlLink}, nil
}

// DeleteEvent deletes an event from Google Calendar
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrRejected)
	}
	calendarID = calendarOrDefault(calendarID)

	err := c.service.Events.Delete(calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return classify("failed to delete event", err)
	}

	return nil
}

// ListUpcoming returns up to max events starting from now, in start order.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, max int) ([]EventSummary, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = 10
	}
	calendarID = calendarOrDefault(calendarID)

	events, err := c.service.Events.List(calendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		MaxResults(int64(max)).
		SingleEvents(true).
		ShowDeleted(false).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("failed to list upcoming events", err)
	}

	result := make([]EventSummary, 0, len(events.Items))
	for _, item := range events.Items {
		if item == nil || item.Status == "cancelled" {
			continue
		}

		startTime, endTime, allDay, parseErr := parseGoogleEventTimes(item, time.UTC)
		if parseErr != nil {
			// Skip malformed events rather than failing the whole request.
			continue
		}

		var attendees []string
		for _, attendee := range item.Attendees {
			if attendee != nil && attendee.Email != "" {
				attendees = append(attendees, attendee.Email)
			}
		}

		result = append(result, EventSummary{
			ID:        item.Id,
			Summary:   item.Summary,
			Location:  item.Location,
			StartTime: startTime,
			EndTime:   endTime,
			AllDay:    allDay,
			Attendees: attendees,
			Link:      item.HtmlLink,
		})
	}

	return result, nil
}
