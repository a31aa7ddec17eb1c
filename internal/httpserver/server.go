// Package httpserver exposes the chat-dispatch HTTP surface:
// create/poll/health on the chat port, read-only admin views and Prometheus
// metrics on the admin port. It only decodes/encodes and maps errors; every
// decision is delegated to internal/dispatchcore.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/dispatchcore"
	"github.com/shiftdesk/chatdispatch/internal/metrics"
	"github.com/shiftdesk/chatdispatch/internal/ratelimit"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// Server wires the chat API and the admin/metrics API onto separate chi
// routers, matching the teacher's per-port router split in
// internal/httpserver/server.go (RouterOpenAI/RouterAdmin/...).
type Server struct {
	facade   *dispatchcore.Facade
	sessions *session.Store
	agents   *agent.Store
	metrics  *metrics.Registry
	limiter  *ratelimit.Limiter
}

// New builds a Server.
func New(facade *dispatchcore.Facade, sessions *session.Store, agents *agent.Store, reg *metrics.Registry, limiter *ratelimit.Limiter) *Server {
	return &Server{facade: facade, sessions: sessions, agents: agents, metrics: reg, limiter: limiter}
}

func (s *Server) newBaseRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	return r
}

// ChatRouter serves the public chat API.
func (s *Server) ChatRouter() http.Handler {
	r := s.newBaseRouter()
	r.Route("/api/Chat", func(api chi.Router) {
		api.With(s.limiter.CreateMiddleware).Post("/create", s.handleCreate)
		api.With(s.limiter.PollMiddleware).Post("/{sessionId}/poll", s.handlePoll)
		api.Get("/health", s.handleHealth)
	})
	return r
}

// AdminRouter serves the read-only admin views and /metrics.
func (s *Server) AdminRouter() http.Handler {
	r := s.newBaseRouter()
	r.Route("/api/Chat/admin", func(admin chi.Router) {
		admin.Get("/sessions", s.handleAdminSessions)
		admin.Get("/queue-status", s.handleAdminQueueStatus)
		admin.Get("/sessions/active", s.handleAdminSessionsActive)
		admin.Get("/sessions/inactive", s.handleAdminSessionsInactive)
	})
	r.Get("/metrics", s.handleMetrics)
	return r
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	s.respondJSON(w, status, map[string]any{"error": err.Error()})
}

// statusForKind maps a dispatchcore.Error's Kind to an HTTP status.
func statusForKind(kind dispatchcore.Kind) int {
	switch kind {
	case dispatchcore.InvalidArgument:
		return http.StatusBadRequest
	case dispatchcore.NotFound:
		return http.StatusNotFound
	case dispatchcore.CapacityConflict, dispatchcore.Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
