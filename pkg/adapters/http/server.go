package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tgquest"
	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/internal/presentation/graph"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/aretw0/tgquest/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the engine surface the HTTP API needs.
type Engine interface {
	ports.QuestEngine
	Inspect() []string
	Document() *domain.QuestDocument
}

// MessageRequest is the body of POST /users/{userID}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// Server serves the JSON API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger  *slog.Logger
	mounts  map[string]http.Handler
	sessions func() int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts the metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return WithMount("/metrics", h)
}

// WithMount serves h on path, outside of the JSON API.
func WithMount(path string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts[path] = h
	}
}

// WithSessionCount reports live sessions on /info.
func WithSessionCount(fn func() int) Option {
	return func(s *Server) {
		s.sessions = fn
	}
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
		mounts:  make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	for path, h := range s.mounts {
		r.Handle(path, h)
	}

	r.Group(func(r chi.Router) {
		r.Use(enableCORS)
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/screens", s.GetScreens)
		r.Get("/graph", s.GetGraph)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/start", s.Start)
			r.Post("/messages", s.SendMessage)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start handles POST /users/{userID}/start.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	reply, err := s.Engine.Start(r.Context(), userID)
	if err != nil {
		s.fail(w, "Start", userID, err)
		return
	}
	s.respond(w, userID, reply)
}

// SendMessage handles POST /users/{userID}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SendMessage: Invalid request body", "err", err)
		return
	}

	text, err := runner.SanitizeInput(body.Text)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("SendMessage: Input rejected", "err", err, "size", len(body.Text))
		return
	}

	reply, err := s.Engine.Handle(r.Context(), userID, text)
	if err != nil {
		s.fail(w, "SendMessage", userID, err)
		return
	}
	s.respond(w, userID, reply)
}

// respond writes the reply and mirrors it to the user's event stream.
// A nil reply answers 204.
func (s *Server) respond(w http.ResponseWriter, userID string, reply *domain.Reply) {
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		s.fail(w, "encode", userID, err)
		return
	}
	s.Streams.Broadcast(userID, string(payload))

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (s *Server) fail(w http.ResponseWriter, op, userID string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrScreenNotFound) {
		status = http.StatusNotFound
	}
	s.logger.Error(op+" failed", "user_id", userID, "err", err)
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

// GetScreens handles GET /screens.
func (s *Server) GetScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string][]string{"screens": s.Engine.Inspect()})
}

// GetGraph handles GET /graph: the quest as a Mermaid flowchart.
// The optional lang and current query parameters tune labels and highlighting.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	opts := graph.Options{Language: r.URL.Query().Get("lang")}
	if current := r.URL.Query().Get("current"); current != "" {
		opts.Overlay = &graph.Overlay{Current: current}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Engine.Document(), opts)))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"app":     "tgquest",
		"version": strings.TrimSpace(tgquest.Version),
		"screens": len(s.Engine.Inspect()),
	}
	if s.sessions != nil {
		resp["sessions"] = s.sessions()
	}
	writeJSON(w, s.logger, resp)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
