package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SourceOpener opens one frame source per tracker connection.
type SourceOpener interface {
	OpenSource(name string) app.FrameSource
}

// landmarkMessage is one frame pushed by a browser-side hand tracker. Ts is the
// capture time in Unix milliseconds; zero means now. An empty point list means no
// hand was seen.
type landmarkMessage struct {
	Points []detector.Point3D `json:"points"`
	Score  float64            `json:"score"`
	Ts     int64              `json:"ts"`
}

// LandmarksHandler ingests landmark frames over a WebSocket. Every connection gets
// its own frame source, closed when the connection ends.
type LandmarksHandler struct {
	sources SourceOpener
	logger *slog.Logger
	now    func() time.Time
}

// NewLandmarksHandler creates a LandmarksHandler opening sources on o.
func NewLandmarksHandler(o SourceOpener, logger *slog.Logger) *LandmarksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LandmarksHandler{
		sources: o,
		logger:  logger.With("component", "landmarks"),
		now:     time.Now,
	}
}

// ServeHTTP handles WebSocket upgrade requests and reads frames until the client
// goes away.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	src := h.sources.OpenSource(r.RemoteAddr)
	defer src.Close()

	h.logger.Debug("tracker connected", "remote", r.RemoteAddr)
	for {
		var msg landmarkMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("landmark read failed", "error", err)
			}
			return
		}
		src.HandleFrame(h.toFrame(msg))
	}
}

func (h *LandmarksHandler) toFrame(msg landmarkMessage) detector.Frame {
	at := h.now()
	if msg.Ts > 0 {
		at = time.UnixMilli(msg.Ts)
	}
	return detector.Frame{Points: msg.Points, Score: msg.Score, At: at}
}
