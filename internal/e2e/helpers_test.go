package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/agent/assistant"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/database"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/server"
	"github.com/omriShneor/tailortalk/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// testServer is a full HTTP stack over a fake calendar, an in-memory DB and
// an optional fake Anthropic endpoint.
type testServer struct {
	server   *httptest.Server
	Calendar *testutil.FakeCalendar
	DB       *database.DB
	Location *time.Location
}

type testServerOptions struct {
	backendTimeout time.Duration
	anthropicURL   string
}

func newTestServer(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	if opts.backendTimeout <= 0 {
		opts.backendTimeout = 2 * time.Second
	}

	cal := testutil.NewFakeCalendar()
	db := database.NewTestDB(t)
	reg := prometheus.NewRegistry()

	orch := booking.NewOrchestrator(booking.Config{
		Backend:         cal,
		CalendarID:      "primary",
		BackendTimeout:  opts.backendTimeout,
		RejectPastDates: true,
		DisplayLocation: kolkata,
		Recorder:        db,
		Metrics:         booking.MustNewMetrics(reg),
		Now: func() time.Time {
			return time.Date(2025, time.January, 10, 9, 0, 0, 0, kolkata)
		},
	})
	parser := intent.NewParser(kolkata)

	var chatAssistant dialogue.Assistant
	if opts.anthropicURL != "" {
		chatAssistant = assistant.NewAgent(assistant.Config{
			APIKey:       "test-key",
			APIURL:       opts.anthropicURL,
			Orchestrator: orch,
			Parser:       parser,
		})
	}

	srv := server.New(server.ServerConfig{
		Router: dialogue.NewRouter(dialogue.Config{
			Parser:       parser,
			Orchestrator: orch,
			Assistant:    chatAssistant,
		}),
		Orchestrator: orch,
		DB:           db,
		Gatherer:     reg,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testServer{server: ts, Calendar: cal, DB: db, Location: kolkata}
}

// BaseURL returns the server's base URL
func (ts *testServer) BaseURL() string {
	return ts.server.URL
}

// postJSON sends body and decodes the JSON reply
func (ts *testServer) postJSON(t *testing.T, path string, body any) (int, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.BaseURL()+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func (ts *testServer) chat(t *testing.T, utterance string, history ...dialogue.Turn) string {
	t.Helper()
	status, result := ts.postJSON(t, "/chat", dialogue.Request{Utterance: utterance, History: history})
	require.Equal(t, http.StatusOK, status)
	reply, ok := result["reply"].(string)
	require.True(t, ok, "reply missing from %v", result)
	return reply
}
