package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
)

// SettingsService stores runtime setting overrides. Values are TOML literals keyed
// by "section.key".
type SettingsService interface {
	Settings() (map[string]string, error)
	UpdateSettings(values map[string]string) error
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	svc SettingsService
}

// NewSettingsHandler creates a SettingsHandler backed by svc.
func NewSettingsHandler(svc SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

type settingsResponse struct {
	Settings map[string]json.RawMessage `json:"settings"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	values, err := h.svc.Settings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: toJSONValues(values)})
}

// put handles PUT /api/settings with a flat object such as
// {"gesture.confidence_floor": 0.8, "motion.click_strategy": "point"}.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	values := make(map[string]string, len(body))
	for key, raw := range body {
		literal, ok := tomlLiteral(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Setting "+key+" must be a number, string, boolean or array")
			return
		}
		values[key] = literal
	}

	if err := h.svc.UpdateSettings(values); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.get(w, r)
}

// tomlLiteral converts a JSON scalar or array into the equivalent TOML literal.
// Objects and null have no single-line TOML form and are rejected.
func tomlLiteral(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '{', 'n':
		return "", false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strconv.Quote(s), true
	}
	return string(raw), true
}

// toJSONValues renders stored TOML literals as JSON. Literals that are not valid
// JSON are returned as strings.
func toJSONValues(values map[string]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(values))
	for key, literal := range values {
		if json.Valid([]byte(literal)) {
			out[key] = json.RawMessage(literal)
			continue
		}
		quoted, _ := json.Marshal(literal)
		out[key] = quoted
	}
	return out
}
