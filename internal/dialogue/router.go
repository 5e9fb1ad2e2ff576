// Package dialogue decides, per chat turn, whether a request is booked
// directly through the intent parser and the booking orchestrator or handed
// to the conversational assistant.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/intent"
)

// DefaultHistorySize is the number of prior turns forwarded to the assistant.
const DefaultHistorySize = 20

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Replies that never depend on the backend.
const (
	AskDateTimeReply = "I can book that, but I need to know when. Please tell me the date and time, for example \"tomorrow at 3 PM\" or \"2025-01-15 at 10:00\"."
	AskRestateReply  = "That time is ambiguous or does not exist on that day because of a clock change. Please restate the time, for example one hour earlier or later."
	HelpReply        = "I can book meetings on your calendar. Try something like \"Book a meeting tomorrow at 3 PM with john@example.com for 1 hour\"."
)

// Turn is one prior message of the chat transcript.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is one chat turn from the front end.
type Request struct {
	Utterance string `json:"utterance"`
	History   []Turn `json:"history"`
}

// Response is always plain text.
type Response struct {
	Reply string `json:"reply"`
}

// Assistant answers turns the router does not book directly.
type Assistant interface {
	Reply(ctx context.Context, utterance string, history []Turn) (string, error)
}

// bookingRule is one ordered keyword rule of the direct-handling check.
type bookingRule struct {
	name string
	re   *regexp.Regexp
}

// Both rules must match for the router to book directly.
var bookingRules = []bookingRule{
	{name: "verb", re: regexp.MustCompile(`(?i)\b(?:book|schedule|set\s+up|arrange)\b`)},
	{name: "noun", re: regexp.MustCompile(`(?i)\b(?:meeting|call|appointment|sync)s?\b`)},
}

// IsBookingRequest reports whether utterance names a booking verb and a
// meeting noun.
func IsBookingRequest(utterance string) bool {
	for _, rule := range bookingRules {
		if !rule.re.MatchString(utterance) {
			return false
		}
	}
	return true
}

// Config configures a Router. Parser and Orchestrator are required.
type Config struct {
	Parser       *intent.Parser
	Orchestrator *booking.Orchestrator
	Assistant    Assistant
	HistorySize  int
}

// Router routes chat turns.
type Router struct {
	parser      *intent.Parser
	orch        *booking.Orchestrator
	assistant   Assistant
	historySize int
}

// NewRouter creates a router from cfg.
func NewRouter(cfg Config) *Router {
	size := cfg.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Router{
		parser:      cfg.Parser,
		orch:        cfg.Orchestrator,
		assistant:   cfg.Assistant,
		historySize: size,
	}
}

// Handle produces the reply for one chat turn.
func (r *Router) Handle(ctx context.Context, req Request) Response {
	utterance := strings.TrimSpace(req.Utterance)
	if utterance == "" {
		return Response{Reply: HelpReply}
	}

	if IsBookingRequest(utterance) {
		mi, err := r.parser.Parse(utterance, r.orch.Now())
		switch {
		case err == nil:
			return Response{Reply: r.orch.Book(ctx, mi).Message()}
		case errors.Is(err, intent.ErrInsufficient):
			return Response{Reply: AskDateTimeReply}
		case errors.Is(err, intent.ErrAmbiguousTime):
			return Response{Reply: AskRestateReply}
		default:
			fmt.Printf("Router: unexpected parse error: %v\n", err)
			return Response{Reply: HelpReply}
		}
	}

	return Response{Reply: r.delegate(ctx, utterance, req.History)}
}

func (r *Router) delegate(ctx context.Context, utterance string, history []Turn) string {
	if r.assistant == nil {
		return HelpReply
	}

	reply, err := r.assistant.Reply(ctx, utterance, r.recent(history))
	if err != nil {
		fmt.Printf("Router: assistant failed: %v\n", err)
		return HelpReply
	}
	if strings.TrimSpace(reply) == "" {
		return HelpReply
	}
	return reply
}

// recent returns the last historySize turns.
func (r *Router) recent(history []Turn) []Turn {
	if len(history) <= r.historySize {
		return history
	}
	return history[len(history)-r.historySize:]
}
