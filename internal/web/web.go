// Package web exposes the scheduling engine as a JSON HTTP API. All
// I/O lives here; the engine packages stay pure and are invoked per
// request with in-memory data.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"calsched/internal/availability"
	"calsched/internal/config"
	"calsched/internal/conflict"
	appLog "calsched/internal/log"
	"calsched/internal/model"
	"calsched/internal/recurrence"
	"calsched/internal/reminder"
	"calsched/internal/stats"
)

// Server provides the HTTP API over the event store and engine.
type Server struct {
	cfg    *config.Config
	store  *Store
	wh     model.WorkingHours
	router chi.Router
}

// NewServer constructs a Server, resolving the configured working hours
// up front so a bad config fails at startup rather than per request.
func NewServer(cfg *config.Config, store *Store) (*Server, error) {
	wh, err := cfg.WorkingHours.Spec()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		wh:     wh,
		router: chi.NewRouter(),
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the root http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Treat empty username or password as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calsched", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.RequestID)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/events", s.handleCreateEvent)
		r.Get("/events", s.handleListEvents)
		r.Get("/events/{id}", s.handleGetEvent)
		r.Delete("/events/{id}", s.handleDeleteEvent)
		r.Get("/events/{id}/occurrences", s.handleOccurrences)
		r.Get("/events/{id}/conflicts", s.handleConflicts)
		r.Get("/events/{id}/reminders", s.handleReminders)
		r.Get("/availability", s.handleAvailability)
		r.Get("/stats", s.handleStats)
		r.Get("/days", s.handleDays)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeEngineError maps engine validation errors to 400 and everything
// else to 500. None of the engine errors are retryable.
func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrInvalidRange) ||
		errors.Is(err, model.ErrInvalidRecurrence) ||
		errors.Is(err, model.ErrUnsupportedFrequency) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var in model.Event
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := model.NewEvent(in)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	ev = s.store.Put(ev)
	appLog.Debug("event stored", "id", ev.ID, "title", ev.Title)
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type occurrencesResponse struct {
	Occurrences []model.Event `json:"occurrences"`
	Truncated   bool          `json:"truncated"`
}

func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	res, err := recurrence.Expand(ev)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, occurrencesResponse{
		Occurrences: res.Occurrences,
		Truncated:   res.Truncated,
	})
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	// The detector is identity-unaware; exclude the event under check
	// from its own pool here.
	pool := make([]model.Event, 0)
	for _, other := range s.store.List() {
		if other.ID == ev.ID {
			continue
		}
		pool = append(pool, other)
	}

	writeJSON(w, http.StatusOK, conflict.FindEventConflicts(ev, pool))
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, reminder.FireTimes(ev))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	busy := make([]model.TimeRange, 0)
	for _, ev := range s.store.List() {
		if ev.Status == model.StatusCancelled {
			continue
		}
		busy = append(busy, ev.Range())
	}

	slots, err := availability.Compute(s.wh, availability.BusyMinutes(date, busy), s.cfg.SlotMinutes)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(stats.FilterByRange(s.store.List(), from, to)))
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	from, to, err := windowParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.GroupByDay(stats.FilterByRange(s.store.List(), from, to)))
}

// windowParams reads the from/to query parameters. Each accepts RFC
// 3339 or a bare date; a bare "to" date extends to the end of that day
// so inclusive day windows behave as expected.
func windowParams(r *http.Request) (from, to time.Time, err error) {
	from, err = parseTimeParam(r.URL.Query().Get("from"), false)
	if err != nil {
		return from, to, fmt.Errorf("from: %w", err)
	}
	to, err = parseTimeParam(r.URL.Query().Get("to"), true)
	if err != nil {
		return from, to, fmt.Errorf("to: %w", err)
	}
	if to.Before(from) {
		return from, to, errors.New("to precedes from")
	}
	return from, to, nil
}

func parseTimeParam(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing parameter")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q, want RFC 3339 or YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
