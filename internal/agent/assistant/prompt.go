package assistant

import (
	"bytes"
	"fmt"
	"time"
)

// toolContracts describes the tools; the model decides when to call them.
const toolContracts = `You help the user manage meetings on their calendar.

## Available Tools

- book_meeting - Book a meeting. Nothing is booked when the slot is busy, in the past, or the calendar is unreachable.
- check_availability - Check whether an interval is free. "unavailable" is never "free".
- list_upcoming_meetings - List the next meetings with their ids.
- cancel_meeting - Cancel a meeting by id.

## Rules

- Resolve relative dates against the current date/time below.
- Pass local times as YYYY-MM-DDTHH:MM in the user's time zone.
- Relay the message a tool returns instead of restating its JSON.
- If the user has not given a date and time, ask for them before booking.`

// buildSystemPrompt appends the current time and zone to the tool contracts.
func buildSystemPrompt(now time.Time, loc *time.Location) string {
	var prompt bytes.Buffer

	prompt.WriteString(toolContracts)
	prompt.WriteString("\n\n## Current Date/Time Reference\n\n")
	local := now.In(loc)
	prompt.WriteString(fmt.Sprintf("Current time: %s (%s)\n", local.Format("2006-01-02 15:04:05 Monday -07:00"), loc.String()))

	return prompt.String()
}
