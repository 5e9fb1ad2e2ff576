package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/database"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router     *dialogue.Router
	orch       *booking.Orchestrator
	db         *database.DB
	gcalClient *gcal.Client
	gatherer   prometheus.Gatherer
	httpSrv    *http.Server
	port       int
}

// ServerConfig holds the server's collaborators. DB, GCalClient and Gatherer
// are optional.
type ServerConfig struct {
	Router       *dialogue.Router
	Orchestrator *booking.Orchestrator
	DB           *database.DB
	GCalClient   *gcal.Client
	Gatherer     prometheus.Gatherer
	Port         int
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		router:     cfg.Router,
		orch:       cfg.Orchestrator,
		db:         cfg.DB,
		gcalClient: cfg.GCalClient,
		gatherer:   cfg.Gatherer,
		port:       cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // chat turns may run several model round-trips
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Chat surface
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /book_meeting", s.handleBookMeeting)

	// Calendar API
	mux.HandleFunc("POST /api/availability", s.handleAvailability)
	mux.HandleFunc("GET /api/events/upcoming", s.handleListUpcoming)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleCancelEvent)

	// Audit log
	mux.HandleFunc("GET /api/bookings", s.handleListBookings)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on http://localhost:%d\n", s.port)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers so the chat front end can call the API
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
