// Package server exposes an environment over HTTP: one step/reset/state
// surface plus a websocket event stream, mirroring the action/observation
// shapes the client package consumes.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/calcbridge/calcctl/env"
)

// StepResponse is the envelope returned by POST /v0/step.
type StepResponse struct {
	Observation env.Observation `json:"observation"`
	Metadata    env.StepInfo    `json:"metadata"`
}

// ResetResponse is the envelope returned by POST /v0/reset.
type ResetResponse struct {
	Observation env.Observation `json:"observation"`
	State       env.State       `json:"state"`
}

// Event is one entry on the websocket event stream.
type Event struct {
	Type        string          `json:"type"` // step|reset
	Observation env.Observation `json:"observation"`
	Metadata    env.StepInfo    `json:"metadata,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Server serves one environment instance. Steps are serialized by the
// environment itself; the server adds no queueing of its own.
type Server struct {
	env    *env.Environment
	token  string
	logger *slog.Logger
	trace  *Trace
	hub    *hub
	mux    *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires a bearer token on every endpoint except health.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrace journals every reset and step to the trace store.
func WithTrace(trace *Trace) Option {
	return func(s *Server) { s.trace = trace }
}

// New builds a server around an environment.
func New(environment *env.Environment, opts ...Option) *Server {
	s := &Server{
		env:    environment,
		logger: slog.Default(),
		hub:    newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /v0/healthz", s.handleHealth)
	s.mux.HandleFunc("POST /v0/reset", s.auth(s.handleReset))
	s.mux.HandleFunc("POST /v0/step", s.auth(s.handleStep))
	s.mux.HandleFunc("GET /v0/state", s.auth(s.handleState))
	s.mux.HandleFunc("GET /v0/events", s.auth(s.handleEvents))
	return s
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != s.token {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	obs := s.env.Reset(r.Context())
	state := s.env.State()
	s.logger.Info("reset", "episode_id", state.EpisodeID, "success", obs.Success)

	if s.trace != nil {
		if err := s.trace.RecordReset(state.EpisodeID, obs); err != nil {
			s.logger.Error("trace reset", "error", err)
		}
	}
	s.hub.publish(Event{Type: "reset", Observation: obs, Metadata: env.StepInfo{EpisodeID: state.EpisodeID}})

	writeJSON(w, http.StatusOK, ResetResponse{Observation: obs, State: state})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var action env.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed action payload: "+err.Error())
		return
	}
	if action.Command == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "action command is required")
		return
	}

	obs, info := s.env.Step(r.Context(), action)
	s.logger.Info("step",
		"episode_id", info.EpisodeID,
		"step", info.Step,
		"command", info.Command,
		"success", obs.Success,
	)

	if s.trace != nil {
		if err := s.trace.RecordStep(info, action, obs); err != nil {
			s.logger.Error("trace step", "error", err)
		}
	}
	s.hub.publish(Event{Type: "step", Observation: obs, Metadata: info})

	writeJSON(w, http.StatusOK, StepResponse{Observation: obs, Metadata: info})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.env.State())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Error("websocket accept", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	events, unsubscribe := s.hub.subscribe()
	defer unsubscribe()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-events:
			if err := wsjson.Write(ctx, conn, event); err != nil {
				return
			}
		}
	}
}

// Close releases the trace store if one is attached.
func (s *Server) Close() error {
	if s.trace != nil {
		return s.trace.Close()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// ListenAndServe runs the server on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("serving", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
