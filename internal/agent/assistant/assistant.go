// Package assistant is the conversational fallback for chat turns the
// dialogue router does not book directly.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/omriShneor/tailortalk/internal/agent"
	"github.com/omriShneor/tailortalk/internal/agent/tools"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/intent"
)

// DefaultMaxTurns bounds the tool-use loop.
const DefaultMaxTurns = 5

// Agent answers chat turns with the booking tools
type Agent struct {
	*agent.Agent
	orch     *booking.Orchestrator
	maxTurns int
}

// Config configures the assistant
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTurns    int
	APIURL      string

	Orchestrator *booking.Orchestrator
	Parser       *intent.Parser
}

// NewAgent creates the assistant with every booking tool registered
func NewAgent(cfg Config) *Agent {
	baseAgent := agent.NewAgent(agent.AgentConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		APIURL:      cfg.APIURL,
	})

	tools.NewBookingTools(cfg.Orchestrator, cfg.Parser).RegisterAll(baseAgent)

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Agent{Agent: baseAgent, orch: cfg.Orchestrator, maxTurns: maxTurns}
}

var _ dialogue.Assistant = (*Agent)(nil)

// Reply runs the tool-use loop for one chat turn
func (a *Agent) Reply(ctx context.Context, utterance string, history []dialogue.Turn) (string, error) {
	if !a.IsConfigured() {
		return "", fmt.Errorf("assistant is not configured")
	}

	output, err := a.Execute(ctx, agent.AgentInput{
		Messages: buildMessages(history, utterance),
		System:   buildSystemPrompt(a.orch.Now(), a.orch.DisplayLocation()),
		MaxTurns: a.maxTurns,
	})
	if output == nil {
		return "", fmt.Errorf("agent execution failed: %w", err)
	}

	if text := strings.TrimSpace(output.FinalText); text != "" {
		return text, nil
	}
	if text := lastToolMessage(output.ToolCalls); text != "" {
		if err != nil {
			fmt.Printf("Assistant: %v, replying with last tool result\n", err)
		}
		return text, nil
	}
	if err != nil {
		return "", fmt.Errorf("agent execution failed: %w", err)
	}
	return "", fmt.Errorf("agent returned no reply")
}

// buildMessages converts the transcript to API messages. The API requires
// alternating roles starting with the user, so consecutive turns of one role
// are merged and leading assistant turns are dropped.
func buildMessages(history []dialogue.Turn, utterance string) []agent.Message {
	turns := make([]dialogue.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, dialogue.Turn{Role: dialogue.RoleUser, Text: utterance})

	var messages []agent.Message
	var texts []string
	role := ""

	flush := func() {
		if role != "" && len(texts) > 0 {
			messages = append(messages, agent.TextMessage(role, strings.Join(texts, "\n\n")))
		}
		texts = nil
	}

	for _, turn := range turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		r := dialogue.RoleUser
		if strings.EqualFold(turn.Role, dialogue.RoleAssistant) || strings.EqualFold(turn.Role, "ai") {
			r = dialogue.RoleAssistant
		}
		if role == "" && r == dialogue.RoleAssistant {
			continue
		}
		if r != role {
			flush()
			role = r
		}
		texts = append(texts, text)
	}
	flush()

	return messages
}

// lastToolMessage returns the "message" field of the most recent successful
// tool result, if it has one.
func lastToolMessage(calls []agent.ToolCall) string {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Error != nil {
			continue
		}
		var result struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(calls[i].Output), &result); err == nil && result.Message != "" {
			return result.Message
		}
	}
	return ""
}
