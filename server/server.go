// Package server exposes the observation boundary consumed by an external
// rendering layer: the ordered message list, the engine state, the last
// error and the single toggle control action. Rendering itself lives outside
// this repository; clients poll the JSON endpoints or subscribe to live
// snapshots over the watch websocket.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/duolog/logging"
	"github.com/hupe1980/duolog/scheduler"
)

// Engine is the scheduler surface the server observes and controls.
type Engine interface {
	Snapshot() scheduler.Snapshot
	Toggle(ctx context.Context) bool
}

// Server serves the observation API for one conversation.
type Server struct {
	engine Engine
	logger logging.Logger

	mu   sync.Mutex
	subs map[chan scheduler.Snapshot]struct{}
}

// New constructs a Server for the given engine.
func New(engine Engine, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Server{engine: engine, logger: logger, subs: make(map[chan scheduler.Snapshot]struct{})}
}

// Router builds the chi router for the observation API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/conversation", s.handleConversation)
		r.Get("/state", s.handleState)
		r.Post("/toggle", s.handleToggle)
		r.Get("/watch", s.handleWatch)
	})

	return r
}

// Broadcast pushes a snapshot to every watch subscriber. Slow subscribers
// drop intermediate snapshots instead of blocking the scheduler.
func (s *Server) Broadcast(snap scheduler.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub <- snap:
		default:
		}
	}
}

func (s *Server) subscribe() chan scheduler.Snapshot {
	sub := make(chan scheduler.Snapshot, 16)
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (s *Server) unsubscribe(sub chan scheduler.Snapshot) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"messages": snap.Messages})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":      snap.State,
		"last_error": snap.LastError,
		"active":     snap.Active,
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	active := s.engine.Toggle(r.Context())
	s.logger.Info("conversation toggled", "active", active)
	writeJSON(w, http.StatusOK, map[string]any{"active": active})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
