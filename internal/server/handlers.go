package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/omriShneor/tailortalk/internal/booking"
	"github.com/omriShneor/tailortalk/internal/database"
	"github.com/omriShneor/tailortalk/internal/dialogue"
	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/omriShneor/tailortalk/internal/timeutil"
)

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "healthy",
		"database": "disabled",
		"gcal":     "disconnected",
	}

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		status["database"] = "ok"
	}

	if s.gcalClient != nil && s.gcalClient.IsAuthenticated() {
		status["gcal"] = "connected"
	}

	respondJSON(w, http.StatusOK, status)
}

// Chat

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req dialogue.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	respondJSON(w, http.StatusOK, s.router.Handle(r.Context(), req))
}

func (s *Server) handleBookMeeting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Utterance string `json:"utterance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp := s.router.BookStructured(r.Context(), req.Utterance)
	respondJSON(w, statusForOutcome(resp.Outcome), resp)
}

// statusForOutcome maps a booking outcome onto the structured endpoint's
// HTTP status.
func statusForOutcome(outcome booking.Outcome) int {
	switch outcome {
	case booking.OutcomeSuccess:
		return http.StatusCreated
	case booking.OutcomeConflict:
		return http.StatusConflict
	case booking.OutcomePastDate:
		return http.StatusUnprocessableEntity
	case booking.OutcomeUnavailable:
		return http.StatusServiceUnavailable
	case booking.OutcomeBackendError:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// Calendar API

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	zone := s.orch.DisplayLocation().String()
	start, _, err := timeutil.ParseDateTime(req.Start, zone)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid start: %v", err))
		return
	}
	end, _, err := timeutil.ParseDateTime(req.End, zone)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid end: %v", err))
		return
	}
	if !end.After(start) {
		respondError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	verdict, err := s.orch.CheckAvailability(r.Context(), start.UTC(), end.UTC())
	if err != nil {
		fmt.Printf("Availability check failed: %v\n", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": verdict.String(),
		"busy":   verdict == booking.VerdictBusy,
	})
}

func (s *Server) handleListUpcoming(w http.ResponseWriter, r *http.Request) {
	max := 10
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid max")
			return
		}
		max = n
	}

	events, err := s.orch.Upcoming(r.Context(), max)
	if err != nil {
		fmt.Printf("Failed to list upcoming events: %v\n", err)
		respondError(w, http.StatusServiceUnavailable, "Calendar unavailable")
		return
	}
	if events == nil {
		events = []gcal.EventSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	if err := s.orch.Cancel(r.Context(), eventID); err != nil {
		if gcal.IsEventNotFound(err) {
			respondError(w, http.StatusNotFound, "Event not found")
			return
		}
		respondError(w, http.StatusBadGateway, "Failed to cancel event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "cancelled",
		"event_id": eventID,
	})
}

// Audit log

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "Booking log disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	attempts, err := s.db.ListAttempts(r.Context(), limit)
	if err != nil {
		fmt.Printf("Failed to list booking attempts: %v\n", err)
		respondError(w, http.StatusInternalServerError, "Failed to list bookings")
		return
	}
	if attempts == nil {
		attempts = []database.BookingAttempt{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": attempts,
		"count":    len(attempts),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
