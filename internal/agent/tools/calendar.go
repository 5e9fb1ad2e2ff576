package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omriShneor/tailortalk/internal/agent"
	"github.com/omriShneor/tailortalk/internal/gcal"
)

const defaultUpcomingLimit = 10

// ListUpcomingMeetingsTool lists the next events on the calendar
var ListUpcomingMeetingsTool = agent.Tool{
	Name: "list_upcoming_meetings",
	Description: `Lists the next meetings on the user's calendar, earliest first.
Use this when the user asks what is coming up or needs an event id before cancelling.
Each event includes its id, summary, start and end time, attendees and link.`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"max_results": agent.PropertyInt("Maximum number of events to return. Defaults to 10."),
	}, nil),
}

// CancelMeetingTool deletes an event by id
var CancelMeetingTool = agent.Tool{
	Name: "cancel_meeting",
	Description: `Cancels a meeting by deleting it from the calendar; attendees are notified.
Requires the event id from list_upcoming_meetings or a previous booking. Only cancel when the
user has clearly asked to, and confirm which meeting if several match.`,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"event_id": agent.PropertyString("Calendar event id to cancel"),
	}, []string{"event_id"}),
}

// HandleListUpcomingMeetings returns the upcoming events
func (b *BookingTools) HandleListUpcomingMeetings(ctx context.Context, input map[string]any) (string, error) {
	limit := defaultUpcomingLimit
	if v, ok := input["max_results"].(float64); ok && v > 0 {
		limit = int(v)
	}

	events, err := b.orch.Upcoming(ctx, limit)
	if err != nil {
		return "", err
	}
	if events == nil {
		events = []gcal.EventSummary{}
	}

	result, err := json.Marshal(map[string]any{
		"status":   "success",
		"count":    len(events),
		"timezone": b.orch.DisplayLocation().String(),
		"events":   events,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(result), nil
}

// HandleCancelMeeting deletes the given event
func (b *BookingTools) HandleCancelMeeting(ctx context.Context, input map[string]any) (string, error) {
	eventID, _ := input["event_id"].(string)
	if eventID == "" {
		return "", fmt.Errorf("event_id is required")
	}

	if err := b.orch.Cancel(ctx, eventID); err != nil {
		if gcal.IsEventNotFound(err) {
			return "", fmt.Errorf("no meeting with id %s exists", eventID)
		}
		return "", err
	}

	result, err := json.Marshal(map[string]any{
		"status":   "cancelled",
		"event_id": eventID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(result), nil
}
