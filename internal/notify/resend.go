package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends email notifications via Resend API
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
}

// NewResendNotifier creates a new Resend email notifier
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
	}
}

// IsConfigured returns true if the notifier has server-side config
func (r *ResendNotifier) IsConfigured() bool {
	return r != nil && r.client != nil && r.fromAddress != ""
}

// Send e-mails a booking confirmation to recipient
func (r *ResendNotifier) Send(ctx context.Context, c *Confirmation, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("no recipient specified")
	}

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{recipient},
		Subject: fmt.Sprintf("Meeting booked: %s", c.Summary),
		Html:    formatEmailHTML(c, time.Now()),
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	fmt.Printf("Email confirmation sent to %s for event: %s\n", recipient, c.Summary)
	return nil
}

// Name returns the notifier name
func (r *ResendNotifier) Name() string {
	return "resend"
}

// formatEmailHTML creates the HTML email body
func formatEmailHTML(c *Confirmation, sentAt time.Time) string {
	attendeesHTML := ""
	if len(c.Attendees) > 0 {
		attendeesHTML = fmt.Sprintf(`<p style="margin: 8px 0;"><strong>Attendees:</strong> %s</p>`,
			html.EscapeString(strings.Join(c.Attendees, ", ")))
	}

	agendaHTML := ""
	if c.Agenda != "" {
		agendaHTML = fmt.Sprintf(`<p style="margin: 16px 0;"><strong>Agenda:</strong> %s</p>`, html.EscapeString(c.Agenda))
	}

	linkHTML := ""
	if c.Link != "" {
		linkHTML = fmt.Sprintf(`<a href="%s" style="display: inline-block; background: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 16px; font-weight: 500;">
      Open in Google Calendar
    </a>`, html.EscapeString(c.Link))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <div style="margin-bottom: 16px;">
      <span style="background-color: #28a745; color: white; padding: 4px 12px; border-radius: 4px; font-size: 12px; font-weight: 600;">Booked</span>
    </div>

    <h2 style="margin: 0 0 16px 0; color: #333;">%s</h2>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid #007bff;">
      <p style="margin: 8px 0;"><strong>When:</strong> %s</p>
      %s
    </div>

    %s
    %s

    <hr style="margin-top: 32px; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-top: 16px;">
      TailorTalk - Meeting Booking Assistant<br>
      <span style="color: #ccc;">Sent at %s</span>
    </p>
  </div>
</body>
</html>`,
		html.EscapeString(c.Summary),
		html.EscapeString(c.Display),
		attendeesHTML,
		agendaHTML,
		linkHTML,
		sentAt.Format("Jan 2, 2006 3:04 PM"),
	)
}
