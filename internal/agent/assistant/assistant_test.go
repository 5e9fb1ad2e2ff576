package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/agent"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessagesAPI replays canned responses and records request bodies.
type fakeMessagesAPI struct {
	mu        sync.Mutex
	responses []string
	requests  []map[string]any
}

func (f *fakeMessagesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(resp))
}

func newTestAgent(t *testing.T, api *fakeMessagesAPI, maxTurns int) (*Agent, *testutil.FakeCalendar) {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	cal := testutil.NewFakeCalendar()
	orch := booking.NewOrchestrator(booking.Config{
		Backend:         cal,
		BackendTimeout:  time.Second,
		RejectPastDates: true,
		DisplayLocation: kolkata,
		Now: func() time.Time {
			return time.Date(2025, time.January, 10, 9, 0, 0, 0, kolkata)
		},
	})

	return NewAgent(Config{
		APIKey:       "test-key",
		MaxTurns:     maxTurns,
		APIURL:       ts.URL,
		Orchestrator: orch,
		Parser:       intent.NewParser(kolkata),
	}), cal
}

func TestReply_ToolLoop(t *testing.T) {
	api := &fakeMessagesAPI{responses: []string{
		`{"content":[{"type":"tool_use","id":"tu_1","name":"book_meeting","input":{"request":"tomorrow at 3 PM for 1 hour"}}],"stop_reason":"tool_use","usage":{"input_tokens":1,"output_tokens":1}}`,
		`{"content":[{"type":"text","text":"Done, your meeting is booked for tomorrow at 3 PM."}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`,
	}}
	a, cal := newTestAgent(t, api, 0)

	reply, err := a.Reply(context.Background(), "please put something in for tomorrow 3pm, an hour", []dialogue.Turn{
		{Role: dialogue.RoleUser, Text: "hi"},
		{Role: dialogue.RoleAssistant, Text: "hello, how can I help?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Done, your meeting is booked for tomorrow at 3 PM.", reply)
	assert.Len(t, cal.Events(), 1)

	require.Len(t, api.requests, 2)
	first := api.requests[0]
	assert.Contains(t, first["system"], "Current time: 2025-01-10 09:00:00 Friday +05:30 (Asia/Kolkata)")
	assert.Len(t, first["tools"], 4)
	assert.Len(t, first["messages"], 3)

	second := api.requests[1]["messages"].([]any)
	require.Len(t, second, 5)
	toolResult := second[4].(map[string]any)["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", toolResult["type"])
	assert.Equal(t, "tu_1", toolResult["tool_use_id"])
	assert.Contains(t, toolResult["content"], `"status":"success"`)
}

func TestReply_MaxTurnsFallsBackToToolMessage(t *testing.T) {
	api := &fakeMessagesAPI{responses: []string{
		`{"content":[{"type":"tool_use","id":"tu_1","name":"check_availability","input":{"start":"2025-01-11T15:00"}}],"stop_reason":"tool_use","usage":{}}`,
	}}
	a, _ := newTestAgent(t, api, 2)

	reply, err := a.Reply(context.Background(), "am I free tomorrow at 3?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "is free")
	assert.Len(t, api.requests, 2)
}

func TestReply_NotConfigured(t *testing.T) {
	a := NewAgent(Config{Orchestrator: booking.NewOrchestrator(booking.Config{Backend: testutil.NewFakeCalendar()})})

	_, err := a.Reply(context.Background(), "hello", nil)
	assert.EqualError(t, err, "assistant is not configured")
}

func TestReply_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer ts.Close()

	a := NewAgent(Config{
		APIKey:       "k",
		APIURL:       ts.URL,
		Orchestrator: booking.NewOrchestrator(booking.Config{Backend: testutil.NewFakeCalendar()}),
	})

	_, err := a.Reply(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestBuildMessages(t *testing.T) {
	messages := buildMessages([]dialogue.Turn{
		{Role: "assistant", Text: "Welcome!"},
		{Role: "user", Text: "hi"},
		{Role: "user", Text: "are you there?"},
		{Role: "ai", Text: "yes"},
		{Role: "user", Text: "  "},
	}, "book something")

	require.Len(t, messages, 3)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, agent.TextMessage("user", "hi\n\nare you there?"), messages[0])
	assert.Equal(t, agent.TextMessage("assistant", "yes"), messages[1])
	assert.Equal(t, agent.TextMessage("user", "book something"), messages[2])
}

func TestLastToolMessage(t *testing.T) {
	calls := []agent.ToolCall{
		{Name: "book_meeting", Output: `{"message":"Meeting booked"}`},
		{Name: "list_upcoming_meetings", Output: `{"count":0}`},
	}
	assert.Equal(t, "Meeting booked", lastToolMessage(calls))
	assert.Empty(t, lastToolMessage(nil))
}
