package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omriShneor/tailortalk/internal/agent/assistant"
	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/config"
	"github.com/omriShneor/tailortalk/internal/database"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/omriShneor/tailortalk/internal/intent"
	"github.com/omriShneor/tailortalk/internal/notify"
	"github.com/omriShneor/tailortalk/internal/server"
	"github.com/omriShneor/tailortalk/internal/timeutil"
)

func main() {
	cfg := config.LoadFromEnv()

	loc, fallback := timeutil.ResolveLocation(cfg.Timezone)
	if fallback {
		fmt.Printf("Warning: unknown timezone %q, using UTC\n", cfg.Timezone)
	}
	display, fallback := timeutil.ResolveLocation(cfg.DisplayTimezone)
	if fallback {
		fmt.Printf("Warning: unknown display timezone %q, using UTC\n", cfg.DisplayTimezone)
	}

	gcalClient, err := initCalendar(cfg)
	if err != nil {
		fatal("initializing Google Calendar", err)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orch := booking.NewOrchestrator(booking.Config{
		Backend:         gcalClient,
		CalendarID:      cfg.CalendarID,
		BackendTimeout:  cfg.BackendTimeout,
		RejectPastDates: cfg.RejectPastDates,
		DisplayLocation: display,
		Recorder:        db,
		Notifier:        initNotifyService(cfg),
		Metrics:         booking.MustNewMetrics(reg),
	})
	parser := intent.NewParser(loc)

	router := dialogue.NewRouter(dialogue.Config{
		Parser:       parser,
		Orchestrator: orch,
		Assistant:    initAssistant(cfg, orch, parser),
		HistorySize:  cfg.ChatHistorySize,
	})

	srv := server.New(server.ServerConfig{
		Router:       router,
		Orchestrator: orch,
		DB:           db,
		GCalClient:   gcalClient,
		Gatherer:     reg,
		Port:         cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	waitForShutdown(srv)
}

// initCalendar prefers a service account key and falls back to the OAuth
// client secret plus saved token.
func initCalendar(cfg *config.Config) (*gcal.Client, error) {
	if cfg.GoogleServiceAccountFile != "" {
		client, err := gcal.NewServiceAccountClient(context.Background(), cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, err
		}
		fmt.Println("Google Calendar configured (service account)")
		return client, nil
	}

	client, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		return nil, err
	}
	if client.IsAuthenticated() {
		fmt.Println("Google Calendar configured (OAuth token)")
	} else {
		fmt.Printf("Warning: no OAuth token at %s, availability checks will report unavailable\n", cfg.GoogleTokenFile)
	}
	return client, nil
}

func initAssistant(cfg *config.Config, orch *booking.Orchestrator, parser *intent.Parser) dialogue.Assistant {
	if cfg.AnthropicAPIKey == "" {
		fmt.Println("Warning: ANTHROPIC_API_KEY not set, non-booking chat will get help text only")
		return nil
	}
	fmt.Println("Assistant configured (tool-calling mode)")
	return assistant.NewAgent(assistant.Config{
		APIKey:       cfg.AnthropicAPIKey,
		Model:        cfg.ClaudeModel,
		Temperature:  cfg.ClaudeTemperature,
		MaxTurns:     cfg.AgentMaxTurns,
		Orchestrator: orch,
		Parser:       parser,
	})
}

func initNotifyService(cfg *config.Config) booking.Notifier {
	if cfg.ResendAPIKey == "" || cfg.NotifyEmail == "" {
		fmt.Println("Booking confirmations disabled (RESEND_API_KEY and TAILORTALK_NOTIFY_EMAIL required)")
		return nil
	}
	fmt.Println("Email notification service configured (Resend)")
	return notify.NewService(notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom), cfg.NotifyEmail)
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
