package notify

import (
	"context"
	"fmt"

	"github.com/omriShneor/tailortalk/internal/booking"
)

// Service sends booking confirmations to the configured operator address.
type Service struct {
	emailNotifier Notifier
	recipient     string
}

// NewService creates a notification service. recipient may be empty, in
// which case confirmations are skipped.
func NewService(emailNotifier Notifier, recipient string) *Service {
	return &Service{
		emailNotifier: emailNotifier,
		recipient:     recipient,
	}
}

// IsEmailAvailable returns true if email notifications can be sent
func (s *Service) IsEmailAvailable() bool {
	return s.emailNotifier != nil && s.emailNotifier.IsConfigured() && s.recipient != ""
}

// NotifyBooked implements booking.Notifier.
func (s *Service) NotifyBooked(ctx context.Context, result *booking.Result) error {
	if !s.IsEmailAvailable() {
		fmt.Println("Notification: Email not configured, skipping confirmation")
		return nil
	}

	c := ConfirmationFor(result)
	fmt.Printf("Notification: Sending confirmation for %s to %s\n", c.EventID, s.recipient)
	if err := s.emailNotifier.Send(ctx, c, s.recipient); err != nil {
		return fmt.Errorf("%s notifier: %w", s.emailNotifier.Name(), err)
	}
	return nil
}

// ConfirmationFor builds a Confirmation from a successful booking result.
func ConfirmationFor(result *booking.Result) *Confirmation {
	c := &Confirmation{
		EventID: result.EventID,
		Display: result.Display,
		Link:    result.Link,
	}
	if mi := result.Intent; mi != nil {
		c.Summary = mi.Summary
		c.Start = mi.Start
		c.End = mi.End
		c.Attendees = mi.Attendees
		if mi.Agenda != nil {
			c.Agenda = *mi.Agenda
		}
	}
	return c
}

var _ booking.Notifier = (*Service)(nil)
