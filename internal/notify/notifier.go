package notify

import (
	"context"
	"time"
)

// Confirmation describes a booked meeting for notification purposes.
type Confirmation struct {
	EventID   string
	Summary   string
	Start     time.Time
	End       time.Time
	Display   string
	Attendees []string
	Agenda    string
	Link      string
}

// Notifier sends booking confirmations to a specific recipient
type Notifier interface {
	// Send sends a confirmation to the specified recipient
	Send(ctx context.Context, c *Confirmation, recipient string) error
	// Name returns the notifier type name (for logging)
	Name() string
	// IsConfigured returns true if the notifier has server-side config
	IsConfigured() bool
}
