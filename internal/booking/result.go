package booking

import (
	"fmt"
	"strings"

	"github.com/omriShneor/tailortalk/internal/intent"
)

// Outcome is the terminal state of one booking attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeConflict     Outcome = "conflict"
	OutcomeUnavailable  Outcome = "unavailable"
	OutcomeBackendError Outcome = "backend_error"
	OutcomePastDate     Outcome = "past_date"
	OutcomeInvalid      Outcome = "invalid_details"
)

// Structured error codes for programmatic callers.
const (
	ErrorCodeInvalidDetails = "INVALID_DETAILS"
	ErrorCodePastDate       = "PAST_DATE"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)

// Result is the terminal state of Book. Err holds the backend cause for
// operator logs and is never rendered into Message.
type Result struct {
	Outcome Outcome
	Intent  *intent.MeetingIntent
	EventID string
	Link    string
	// Display is the interval rendered in the display zone.
	Display string
	Err     error
}

// Success reports whether an event was created.
func (r *Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// ErrorCode maps the outcome to INVALID_DETAILS, PAST_DATE or INTERNAL_ERROR.
// Success and conflict have no error code.
func (r *Result) ErrorCode() string {
	switch r.Outcome {
	case OutcomeSuccess, OutcomeConflict:
		return ""
	case OutcomeInvalid:
		return ErrorCodeInvalidDetails
	case OutcomePastDate:
		return ErrorCodePastDate
	default:
		return ErrorCodeInternal
	}
}

// Message renders the user-facing text for the outcome.
func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeSuccess:
		var b strings.Builder
		fmt.Fprintf(&b, "Meeting booked: %s on %s.", r.summary(), r.Display)
		if r.Intent != nil && len(r.Intent.Attendees) > 0 {
			fmt.Fprintf(&b, " Invitations sent to %s.", strings.Join(r.Intent.Attendees, ", "))
		}
		if r.Intent != nil && r.Intent.Agenda != nil {
			fmt.Fprintf(&b, " Agenda: %s.", *r.Intent.Agenda)
		}
		if r.Link != "" {
			fmt.Fprintf(&b, " Link: %s", r.Link)
		}
		return b.String()
	case OutcomeConflict:
		return fmt.Sprintf("That time is busy: %s overlaps an existing event. Please pick another slot.", r.Display)
	case OutcomeUnavailable:
		return fmt.Sprintf("I couldn't verify availability for %s right now, so nothing was booked. Please try again in a moment.", r.Display)
	case OutcomeBackendError:
		return fmt.Sprintf("The calendar could not create the meeting for %s. Nothing was booked; please try again later.", r.Display)
	case OutcomePastDate:
		return fmt.Sprintf("%s is in the past. Please choose a future date and time.", r.Display)
	default:
		return "I need a date, a time and a positive duration to book a meeting."
	}
}

func (r *Result) summary() string {
	if r.Intent == nil || r.Intent.Summary == "" {
		return intent.DefaultSummary
	}
	return r.Intent.Summary
}
