package agent

import (
	"context"
	"errors"
	"fmt"
)

// ErrMaxTurns means the model was still calling tools when the turn budget ran out.
var ErrMaxTurns = errors.New("agent exceeded max turns")

// Agent runs the Messages API tool-use loop over a registry of tools.
type Agent struct {
	apiClient *APIClient
	registry  *ToolRegistry
}

// AgentConfig configures an agent
type AgentConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	// APIURL overrides the Messages endpoint when non-empty.
	APIURL string
}

// NewAgent creates an agent with an empty tool registry
func NewAgent(cfg AgentConfig) *Agent {
	client := NewAPIClient(cfg.APIKey, cfg.Model, cfg.Temperature)
	if cfg.APIURL != "" {
		client.SetAPIURL(cfg.APIURL)
	}
	return &Agent{
		apiClient: client,
		registry:  NewToolRegistry(),
	}
}

// MustRegisterTool adds a tool and panics on a duplicate name
func (a *Agent) MustRegisterTool(tool Tool, handler ToolHandler) {
	a.registry.MustRegister(tool, handler)
}

// Tools returns the registered tools in registration order
func (a *Agent) Tools() []Tool {
	return a.registry.Tools()
}

// IsConfigured returns true if the agent's API client has a key
func (a *Agent) IsConfigured() bool {
	return a.apiClient != nil && a.apiClient.IsConfigured()
}

// Execute calls the model until it stops asking for tools or MaxTurns API
// calls have been made. When the budget runs out the partial output is
// returned together with an error wrapping ErrMaxTurns.
func (a *Agent) Execute(ctx context.Context, input AgentInput) (*AgentOutput, error) {
	maxTurns := input.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 1
	}

	messages := make([]Message, len(input.Messages))
	copy(messages, input.Messages)

	output := &AgentOutput{}
	for turn := 0; turn < maxTurns; turn++ {
		response, err := a.apiClient.Call(ctx, messages, CallOptions{
			System: input.System,
			Tools:  a.registry.Tools(),
		})
		if err != nil {
			return nil, fmt.Errorf("API call failed on turn %d: %w", turn+1, err)
		}
		output.Usage.Add(response.Usage)

		switch response.StopReason {
		case "end_turn", "stop_sequence", "max_tokens":
			output.FinalText = extractFinalText(response.Content)
			return output, nil

		case "tool_use":
			messages = append(messages, Message{Role: "assistant", Content: response.Content})
			results, calls := a.executeTools(ctx, response.Content)
			output.ToolCalls = append(output.ToolCalls, calls...)
			messages = append(messages, Message{Role: "user", Content: results})

		default:
			return nil, fmt.Errorf("unexpected stop reason: %s", response.StopReason)
		}
	}

	return output, fmt.Errorf("%w (%d)", ErrMaxTurns, maxTurns)
}

// executeTools runs every tool_use block in order. Handler errors go back to
// the model as error results.
func (a *Agent) executeTools(ctx context.Context, content []ContentBlock) ([]ContentBlock, []ToolCall) {
	var results []ContentBlock
	var calls []ToolCall

	for _, block := range content {
		toolUse, ok := block.(ToolUseBlock)
		if !ok {
			continue
		}

		output, err := a.registry.Execute(ctx, toolUse.Name, toolUse.Input)
		calls = append(calls, ToolCall{
			Name:   toolUse.Name,
			Input:  toolUse.Input,
			Output: output,
			Error:  err,
		})

		result := ToolResultBlock{
			Type:      "tool_result",
			ToolUseID: toolUse.ID,
			Content:   output,
		}
		if err != nil {
			fmt.Printf("Agent: tool %s failed: %v\n", toolUse.Name, err)
			result.Content = err.Error()
			result.IsError = true
		}
		results = append(results, result)
	}

	return results, calls
}

// extractFinalText joins the text blocks of the last response
func extractFinalText(content []ContentBlock) string {
	var text string
	for _, block := range content {
		if tb, ok := block.(TextBlock); ok {
			if text != "" {
				text += "\n"
			}
			text += tb.Text
		}
	}
	return text
}
