package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryHandler serves the command journal.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler reading from s.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// ServeHTTP routes /api/history and /api/history/stats.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/history")
	switch strings.Trim(path, "/") {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type commandResponse struct {
	Seq        int64   `json:"seq"`
	ID         string  `json:"id"`
	Channel    string  `json:"channel"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Outcome    string  `json:"outcome"`
	Message    string  `json:"message,omitempty"`
	Source     string  `json:"source,omitempty"`
	At         string  `json:"at"`
}

type historyResponse struct {
	Commands []commandResponse `json:"commands"`
}

type statsResponse struct {
	Total     int            `json:"total"`
	ByOutcome map[string]int `json:"by_outcome"`
}

func toResponse(c *store.Command) commandResponse {
	return commandResponse{
		Seq:        c.Seq,
		ID:         c.ID,
		Channel:    c.Channel,
		Action:     c.Action,
		Confidence: c.Confidence,
		Outcome:    c.Outcome,
		Message:    c.Message,
		Source:     c.Source,
		At:         c.At.Format(time.RFC3339Nano),
	}
}

// list handles GET /api/history?limit=N, newest first.
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	commands, err := h.store.Commands().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}

	resp := historyResponse{Commands: make([]commandResponse, 0, len(commands))}
	for _, c := range commands {
		resp.Commands = append(resp.Commands, toResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// stats handles GET /api/history/stats.
func (h *HistoryHandler) stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.Commands().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count history")
		return
	}
	byOutcome, err := h.store.Commands().CountByOutcome()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count history")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Total: total, ByOutcome: byOutcome})
}
