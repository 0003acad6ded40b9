package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Sessions is the part of session.Manager the server drives.
type Sessions interface {
	Create(ctx context.Context, initial string) (*session.Snapshot, error)
	Navigate(ctx context.Context, sessionID, target string, opts ...domain.NavigationOption) (*session.Snapshot, error)
	Back(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Forward(ctx context.Context, sessionID string) (*session.Snapshot, error)
	State(ctx context.Context, sessionID string) (*session.Snapshot, error)
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

var _ Sessions = (*session.Manager)(nil)

// Server exposes sessions over HTTP.
type Server struct {
	Sessions Sessions
	Streams  *StreamManager

	parser  *expression.Parser
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithParser shares a route parser (and its cache) with the server.
func WithParser(p *expression.Parser) Option {
	return func(s *Server) { s.parser = p }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NavigateRequest is the body of POST /sessions/{id}/navigate.
type NavigateRequest struct {
	Route   string         `json:"route"`
	Options map[string]any `json:"options,omitempty"`
}

// CreateRequest is the body of POST /sessions.
type CreateRequest struct {
	Route string `json:"route"`
}

// ParseResponse describes a parsed route.
type ParseResponse = instruction.Description

// NewServer creates a Server over sessions.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		parser:   expression.NewParser(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)
	if router, err := specRouter(); err != nil {
		s.logger.Error("request validation disabled", "err", err)
	} else {
		r.Use(s.validateRequests(router))
	}

	r.Get("/openapi.yaml", s.serveSpec)
	r.Get("/swagger", serveSwaggerUI)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/parse", s.Parse)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/navigate", s.Navigate)
			r.Post("/back", s.Back)
			r.Post("/forward", s.Forward)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "waypoint-http",
		"version": strings.TrimSpace(waypoint.Version),
	})
}

// Parse handles GET /parse?route=...
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	route, err := runner.SanitizeRoute(r.URL.Query().Get("route"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid route", err)
		return
	}
	desc, err := instruction.Describe(s.parser, route, r.URL.Query().Get("hash") == "true")
	if err != nil {
		s.fail(w, http.StatusBadRequest, "parse error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, desc)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.fail(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}
	route, err := runner.SanitizeRoute(body.Route)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid route", err)
		return
	}
	snap, err := s.Sessions.Create(r.Context(), route)
	if err != nil {
		s.fail(w, statusFor(err), "create failed", err)
		return
	}
	s.broadcast(r.Context(), snap.SessionID, nil)
	s.writeJSON(w, http.StatusCreated, snap)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, statusFor(err), "state failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, statusFor(err), "delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /sessions/{id}/navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	route, err := runner.SanitizeRoute(body.Route)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid route", err)
		return
	}
	opts, err := runner.DecodeNavigationOptions(body.Options)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid options", err)
		return
	}

	before := s.load(r.Context(), id)
	snap, err := s.Sessions.Navigate(r.Context(), id, route, opts...)
	if err != nil {
		s.fail(w, statusFor(err), "navigate failed", err)
		return
	}
	s.broadcast(r.Context(), id, before)
	s.writeJSON(w, http.StatusOK, snap)
}

// Back handles POST /sessions/{id}/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.traverse(w, r, s.Sessions.Back)
}

// Forward handles POST /sessions/{id}/forward.
func (s *Server) Forward(w http.ResponseWriter, r *http.Request) {
	s.traverse(w, r, s.Sessions.Forward)
}

func (s *Server) traverse(w http.ResponseWriter, r *http.Request, move func(context.Context, string) (*session.Snapshot, error)) {
	id := chi.URLParam(r, "id")
	before := s.load(r.Context(), id)
	snap, err := move(r.Context(), id)
	if err != nil {
		s.fail(w, statusFor(err), "history move failed", err)
		return
	}
	s.broadcast(r.Context(), id, before)
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) load(ctx context.Context, id string) *domain.State {
	st, err := s.Sessions.Load(ctx, id)
	if err != nil {
		return nil
	}
	return st
}

// broadcast pushes the change since before to SSE subscribers.
func (s *Server) broadcast(ctx context.Context, id string, before *domain.State) {
	after := s.load(ctx, id)
	diff := domain.Diff(before, after)
	if diff == nil {
		s.logger.Debug("no diff calculated", "session_id", id)
		return
	}
	b, err := json.Marshal(diff)
	if err != nil {
		s.logger.Warn("diff encode failed", "session_id", id, "err", err)
		return
	}
	s.Streams.Broadcast(id, string(b))
}

func statusFor(err error) int {
	var perr *expression.ParseError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &perr),
		errors.Is(err, domain.ErrUnknownComponent),
		errors.Is(err, domain.ErrUnknownRoute),
		errors.Is(err, domain.ErrUnknownViewport),
		errors.Is(err, domain.ErrNoAvailableViewport),
		errors.Is(err, instruction.ErrInvalidComponent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRedirectLoop):
		return http.StatusLoopDetected
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	} else {
		s.logger.Warn(msg, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s: %v", msg, err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
