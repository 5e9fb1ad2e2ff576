// Package main provides a local server for developing the chat front end.
// It uses an in-memory fake calendar and in-memory SQLite, so nothing touches
// a real Google account. The assistant uses the real Claude API when
// ANTHROPIC_API_KEY is set.
//
// Usage:
//
//	go run ./cmd/testserver
//
// The server exposes additional test control endpoints:
//   - POST /api/test/reset - Drop all fake events and busy time
//   - POST /api/test/busy - Mark {start, end} busy on the fake calendar
//   - POST /api/test/delay - Delay every fake calendar call by {seconds}
//   - GET /api/test/events - List events created on the fake calendar
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omriShneor/tailortalk/internal/agent/assistant"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/config"
	"github.com/omriShneor/tailortalk/internal/database"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/server"
	"github.com/omriShneor/tailortalk/internal/testutil"
	"github.com/omriShneor/tailortalk/internal/timeutil"
)

func main() {
	fmt.Println("Starting TailorTalk Test Server...")
	fmt.Println("This server uses a fake calendar and in-memory SQLite.")

	cfg := config.LoadFromEnv()
	loc, _ := timeutil.ResolveLocation(cfg.Timezone)
	display, _ := timeutil.ResolveLocation(cfg.DisplayTimezone)

	db, err := database.New(":memory:")
	if err != nil {
		fmt.Printf("Failed to create database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("In-memory database initialized")

	cal := testutil.NewFakeCalendar()
	reg := prometheus.NewRegistry()

	orch := booking.NewOrchestrator(booking.Config{
		Backend:         cal,
		CalendarID:      cfg.CalendarID,
		BackendTimeout:  cfg.BackendTimeout,
		RejectPastDates: cfg.RejectPastDates,
		DisplayLocation: display,
		Recorder:        db,
		Metrics:         booking.MustNewMetrics(reg),
	})
	parser := intent.NewParser(loc)

	var chatAssistant dialogue.Assistant
	if cfg.AnthropicAPIKey != "" {
		chatAssistant = assistant.NewAgent(assistant.Config{
			APIKey:       cfg.AnthropicAPIKey,
			Model:        cfg.ClaudeModel,
			Temperature:  cfg.ClaudeTemperature,
			MaxTurns:     cfg.AgentMaxTurns,
			Orchestrator: orch,
			Parser:       parser,
		})
		fmt.Println("Claude API configured for the assistant")
	} else {
		fmt.Println("Warning: ANTHROPIC_API_KEY not set. Non-booking chat will get help text only.")
	}

	srv := server.New(server.ServerConfig{
		Router: dialogue.NewRouter(dialogue.Config{
			Parser:       parser,
			Orchestrator: orch,
			Assistant:    chatAssistant,
			HistorySize:  cfg.ChatHistorySize,
		}),
		Orchestrator: orch,
		DB:           db,
		Gatherer:     reg,
		Port:         cfg.HTTPPort,
	})

	// Create test control mux
	testMux := http.NewServeMux()

	testMux.HandleFunc("POST /api/test/reset", func(w http.ResponseWriter, r *http.Request) {
		fmt.Println("Resetting fake calendar...")
		cal.Reset()
		respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	})

	testMux.HandleFunc("POST /api/test/busy", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		start, _, err := timeutil.ParseDateTime(req.Start, cfg.Timezone)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid start: %v", err), http.StatusBadRequest)
			return
		}
		end, _, err := timeutil.ParseDateTime(req.End, cfg.Timezone)
		if err != nil || !end.After(start) {
			http.Error(w, "Invalid end", http.StatusBadRequest)
			return
		}

		cal.AddBusy(start, end)
		respondJSON(w, http.StatusOK, map[string]string{"status": "busy"})
	})

	testMux.HandleFunc("POST /api/test/delay", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Seconds float64 `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		cal.SetDelay(time.Duration(req.Seconds * float64(time.Second)))
		respondJSON(w, http.StatusOK, map[string]float64{"delay_seconds": req.Seconds})
	})

	testMux.HandleFunc("GET /api/test/events", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, cal.Events())
	})

	// Everything else goes to the real server
	testMux.Handle("/", srv.Handler())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: corsMiddleware(testMux),
	}

	// Start server in goroutine
	go func() {
		fmt.Printf("\nTest Server running on http://localhost:%d\n", cfg.HTTPPort)
		fmt.Println("\nTest endpoints:")
		fmt.Println("  POST /api/test/reset  - Drop all fake events and busy time")
		fmt.Println("  POST /api/test/busy   - Mark {start, end} busy")
		fmt.Println("  POST /api/test/delay  - Delay calendar calls by {seconds}")
		fmt.Println("  GET  /api/test/events - List fake calendar events")
		fmt.Println("\nPress Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down test server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}

	fmt.Println("Test server stopped")
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
