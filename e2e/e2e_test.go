package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// hostPage answers bridge requests the way the browser page does.
type hostPage struct {
	conn *websocket.Conn

	mu      sync.Mutex
	methods []string
}

type wireMessage struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func attachHost(t *testing.T, baseURL string) *hostPage {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(baseURL, "/api/bridge"), nil)
	if err != nil {
		t.Fatalf("Dial(bridge) error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	h := &hostPage{conn: conn}
	go h.loop()
	return h
}

func (h *hostPage) loop() {
	for {
		var msg wireMessage
		if err := h.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "request" {
			continue
		}
		h.mu.Lock()
		h.methods = append(h.methods, msg.Method)
		h.mu.Unlock()

		result := json.RawMessage(`{}`)
		if msg.Method == "status" {
			result = json.RawMessage(`{"playing": false, "volume": 40}`)
		}
		h.conn.WriteJSON(wireMessage{Type: "reply", ID: msg.ID, Result: result})
	}
}

func (h *hostPage) Methods() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.methods...)
}

func wsURL(base, path string) string {
	return "ws" + strings.TrimPrefix(base, "http") + path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type historyEntry struct {
	Channel string `json:"channel"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"`
}

func history(t *testing.T, client *http.Client, baseURL string) []historyEntry {
	t.Helper()
	resp, err := client.Get(baseURL + "/api/history")
	if err != nil {
		t.Fatalf("GET /api/history error = %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Commands []historyEntry `json:"commands"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	return body.Commands
}

func TestE2E_GestureThenVoice(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	bridge := server.NewHostBridge(time.Second, logging.Discard())
	cfg := config.Default()
	application, err := app.New(app.Options{
		Config:   &cfg,
		Logger:   logging.Discard(),
		Store:    s,
		Deps:     control.Deps{Player: bridge, Navigator: bridge, Page: bridge, Listener: bridge},
		Hit:      bridge,
		Notifier: bridge,
		LockPath: filepath.Join(tmpDir, "mudra.lock"),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Close()

	ts := httptest.NewServer(server.New(server.Config{
		Store:      s,
		Controller: application,
		Bridge:     bridge,
		Logger:     logging.Discard(),
	}))
	defer ts.Close()
	client := ts.Client()

	host := attachHost(t, ts.URL)
	waitFor(t, "host connection", bridge.Connected)

	t.Run("FistResumesPlayback", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, "/api/landmarks"), nil)
		if err != nil {
			t.Fatalf("Dial(landmarks) error = %v", err)
		}
		defer conn.Close()

		fist := detector.FistLandmarks()
		if err := conn.WriteJSON(map[string]any{"points": fist.Points[:], "score": 0.95}); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}

		waitFor(t, "gesture command", func() bool { return len(history(t, client, ts.URL)) == 1 })
		got := history(t, client, ts.URL)[0]
		if got.Channel != "gesture" || got.Action != string(control.ActionTogglePlayPause) || got.Outcome != "succeeded" {
			t.Errorf("history entry = %+v", got)
		}
		methods := host.Methods()
		if len(methods) != 2 || methods[0] != "status" || methods[1] != "resume" {
			t.Errorf("host methods = %v, want [status resume]", methods)
		}
	})

	t.Run("VoiceRightAfterGestureIsPreempted", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/transcripts", "application/json", strings.NewReader(`{"text": "next song"}`))
		if err != nil {
			t.Fatalf("POST /api/transcripts error = %v", err)
		}
		defer resp.Body.Close()
		var body struct {
			Outcome string `json:"outcome"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Outcome != string(control.OutcomePreempted) {
			t.Fatalf("outcome = %s, want preempted", body.Outcome)
		}

		entries := history(t, client, ts.URL)
		if len(entries) != 2 {
			t.Fatalf("history has %d entries, want 2", len(entries))
		}
		if entries[0].Channel != "voice" || entries[0].Outcome != "preempted" {
			t.Errorf("newest entry = %+v", entries[0])
		}
		if n := len(host.Methods()); n != 2 {
			t.Errorf("preempted command reached the host: %v", host.Methods())
		}
	})

	t.Run("StatusReportsLastCommand", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/session")
		if err != nil {
			t.Fatalf("GET /api/session error = %v", err)
		}
		defer resp.Body.Close()
		var st app.Status
		json.NewDecoder(resp.Body).Decode(&st)
		if st.LastAction != string(control.ActionTogglePlayPause) || !st.Gestures || !st.Voice {
			t.Errorf("status = %+v", st)
		}
	})
}
