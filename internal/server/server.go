// Package server provides the HTTP surface of mudra: the host page bridge, landmark
// and transcript ingest, session toggles, history and settings.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/intent"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Controller is the application surface the server drives.
type Controller interface {
	SourceOpener
	api.SettingsService
	HandleTranscript(text string, final bool, at time.Time) (intent.Intent, control.Outcome)
	SetGesturesEnabled(enabled bool)
	SetVoiceEnabled(enabled bool)
	Status() app.Status
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller Controller
	Bridge     *HostBridge
	Logger     *slog.Logger
}

// Server represents the HTTP server for mudra.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if c := s.config.Controller; c != nil {
		s.mux.HandleFunc("/api/session", s.handleSession)
		s.mux.HandleFunc("/api/transcripts", s.handleTranscript)
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(c, s.logger))
		s.mux.Handle("/api/settings", api.NewSettingsHandler(c))
	}

	if s.config.Bridge != nil {
		s.mux.Handle("/api/bridge", s.config.Bridge)
	}

	if s.config.Store != nil {
		history := api.NewHistoryHandler(s.config.Store)
		s.mux.Handle("/api/history", history)
		s.mux.Handle("/api/history/", history)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Bridge != nil {
		response["host_connected"] = s.config.Bridge.Connected()
	}
	api.WriteJSON(w, http.StatusOK, response)
}

type sessionRequest struct {
	Gestures *bool `json:"gestures"`
	Voice    *bool `json:"voice"`
}

// handleSession reports status on GET and toggles channels on POST.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c := s.config.Controller
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Gestures != nil {
			c.SetGesturesEnabled(*req.Gestures)
		}
		if req.Voice != nil {
			c.SetVoiceEnabled(*req.Voice)
		}
		st := c.Status()
		s.logger.Info("session updated", "gestures", st.Gestures, "voice", st.Voice)
		api.WriteJSON(w, http.StatusOK, st)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.WriteJSON(w, http.StatusOK, c.Status())
}

type transcriptRequest struct {
	Text  string `json:"text"`
	Final *bool  `json:"final"`
	Ts    int64  `json:"ts"`
}

type transcriptResponse struct {
	Intent  intent.Intent   `json:"intent"`
	Outcome control.Outcome `json:"outcome"`
}

// handleTranscript handles POST /api/transcripts. A transcript is final unless the
// body says otherwise.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	final := req.Final == nil || *req.Final
	var at time.Time
	if req.Ts > 0 {
		at = time.UnixMilli(req.Ts)
	}

	in, outcome := s.config.Controller.HandleTranscript(req.Text, final, at)
	api.WriteJSON(w, http.StatusOK, transcriptResponse{Intent: in, Outcome: outcome})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
