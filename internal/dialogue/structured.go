package dialogue

import (
	"context"
	"errors"
	"strings"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/intent"
)

// StructuredResponse is the reply of the structured booking endpoint.
type StructuredResponse struct {
	Message   string          `json:"message"`
	Details   *intent.Details `json:"details"`
	Success   bool            `json:"success"`
	ErrorCode string          `json:"error_code,omitempty"`

	// Outcome drives the HTTP status and is not serialized.
	Outcome booking.Outcome `json:"-"`
}

// BookStructured parses and books utterance without the keyword check and
// without falling back to the assistant.
func (r *Router) BookStructured(ctx context.Context, utterance string) *StructuredResponse {
	utterance = strings.TrimSpace(utterance)

	mi, err := r.parser.Parse(utterance, r.orch.Now())
	if err != nil {
		msg := AskDateTimeReply
		if errors.Is(err, intent.ErrAmbiguousTime) {
			msg = AskRestateReply
		}
		return &StructuredResponse{
			Message:   msg,
			ErrorCode: booking.ErrorCodeInvalidDetails,
			Outcome:   booking.OutcomeInvalid,
		}
	}

	res := r.orch.Book(ctx, mi)
	return &StructuredResponse{
		Message:   res.Message(),
		Details:   mi.Details(),
		Success:   res.Success(),
		ErrorCode: res.ErrorCode(),
		Outcome:   res.Outcome,
	}
}
