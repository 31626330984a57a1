package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/plugin"
)

// Bridge message types.
const (
	msgRequest  = "request"
	msgReply    = "reply"
	msgTargets  = "targets"
	msgFeedback = "feedback"
)

// Methods the host page answers.
const (
	methodPlay            = "play"
	methodPause           = "pause"
	methodResume          = "resume"
	methodNext            = "next"
	methodPrevious        = "previous"
	methodPlayQuery       = "play_query"
	methodPlayMood        = "play_mood"
	methodPlayTrack       = "play_track"
	methodPlayPlaylist    = "play_playlist"
	methodPlayLiked       = "play_liked"
	methodSearchAndPlay   = "search_and_play"
	methodSetVolume       = "set_volume"
	methodAdjustVolume    = "adjust_volume"
	methodStatus          = "status"
	methodNavigate        = "navigate"
	methodGoBack          = "go_back"
	methodScrollBy        = "scroll_by"
	methodScrollToSection = "scroll_to_section"
	methodScrollToEdge    = "scroll_to_edge"
	methodPlayItem        = "play_item_in_section"
	methodClick           = "click"
	methodStartListening  = "start_listening"
	methodStopListening   = "stop_listening"
)

const bridgeWriteWait = 2 * time.Second

// ErrNotConnected is returned when no host page is attached to the bridge.
var ErrNotConnected = fmt.Errorf("host page not connected: %w", playback.ErrUnavailable)

// Target is a clickable rectangle on the host page in screen coordinates.
type Target struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (t Target) contains(x, y float64) bool {
	return x >= t.X && x < t.X+t.Width && y >= t.Y && y < t.Y+t.Height
}

// bridgeParams carries the arguments of every bridge method.
type bridgeParams struct {
	Query    string `json:"query,omitempty"`
	Mood     string `json:"mood,omitempty"`
	Track    int    `json:"track,omitempty"`
	Playlist string `json:"playlist,omitempty"`
	Volume   *int   `json:"volume,omitempty"`
	Delta    int    `json:"delta,omitempty"`
	Page     string `json:"page,omitempty"`
	Pixels   int    `json:"pixels,omitempty"`
	Section  string `json:"section,omitempty"`
	Item     int    `json:"item,omitempty"`
	Top      *bool  `json:"top,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type bridgeMessage struct {
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	Method   string            `json:"method,omitempty"`
	Params   *bridgeParams     `json:"params,omitempty"`
	Result   json.RawMessage   `json:"result,omitempty"`
	Error    *bridgeError      `json:"error,omitempty"`
	Targets  []Target          `json:"targets,omitempty"`
	Feedback *control.Feedback `json:"feedback,omitempty"`
}

type playerStatus struct {
	Playing bool `json:"playing"`
	Volume  *int `json:"volume,omitempty"`
}

// HostBridge drives the media page in the user's browser. The page connects over a
// websocket and answers request messages correlated by id. It also pushes the
// rectangles of its clickable elements so hit testing needs no round trip.
//
// HostBridge implements playback.Player, playback.Navigator, playback.Page,
// playback.Listener, motion.HitTester and control.Notifier.
type HostBridge struct {
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan bridgeMessage
	targets []Target

	writeMu sync.Mutex
}

// NewHostBridge creates a bridge whose requests time out after timeout.
func NewHostBridge(timeout time.Duration, logger *slog.Logger) *HostBridge {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HostBridge{
		timeout: timeout,
		logger:  logger.With("component", "bridge"),
		pending: make(map[string]chan bridgeMessage),
	}
}

// Connected reports whether a host page is attached.
func (b *HostBridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// ServeHTTP attaches a host page. A new connection replaces the previous one.
func (b *HostBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	old := b.conn
	b.conn = conn
	b.mu.Unlock()
	if old != nil {
		old.Close()
	}
	b.logger.Info("host page connected", "remote", r.RemoteAddr)

	defer b.detach(conn)
	for {
		var msg bridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Warn("host page read failed", "error", err)
			}
			return
		}
		b.dispatch(msg)
	}
}

func (b *HostBridge) dispatch(msg bridgeMessage) {
	switch msg.Type {
	case msgReply:
		b.mu.Lock()
		ch, ok := b.pending[msg.ID]
		delete(b.pending, msg.ID)
		b.mu.Unlock()
		if !ok {
			b.logger.Debug("late reply", "id", msg.ID)
			return
		}
		ch <- msg
	case msgTargets:
		b.mu.Lock()
		b.targets = append([]Target(nil), msg.Targets...)
		b.mu.Unlock()
	default:
		b.logger.Debug("unknown message", "type", msg.Type)
	}
}

// detach drops conn and fails its pending requests.
func (b *HostBridge) detach(conn *websocket.Conn) {
	conn.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != conn {
		return
	}
	b.conn = nil
	b.targets = nil
	for id, ch := range b.pending {
		ch <- bridgeMessage{Type: msgReply, ID: id, Error: &bridgeError{Code: plugin.CodeTransport, Message: "host page disconnected"}}
		delete(b.pending, id)
	}
	b.logger.Info("host page disconnected")
}

func (b *HostBridge) write(conn *websocket.Conn, msg bridgeMessage) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(bridgeWriteWait))
	return conn.WriteJSON(msg)
}

// call sends a request and waits for its reply.
func (b *HostBridge) call(ctx context.Context, method string, params bridgeParams) (json.RawMessage, error) {
	id := uuid.NewString()
	ch := make(chan bridgeMessage, 1)

	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", method, ErrNotConnected)
	}
	b.pending[id] = ch
	b.mu.Unlock()

	forget := func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}

	if err := b.write(conn, bridgeMessage{Type: msgRequest, ID: id, Method: method, Params: &params}); err != nil {
		forget()
		return nil, fmt.Errorf("%s: %w: %w", method, playback.ErrTransport, err)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return nil, replyError(method, reply.Error)
		}
		return reply.Result, nil
	case <-timer.C:
		forget()
		return nil, fmt.Errorf("%s: no reply within %s: %w", method, b.timeout, playback.ErrTransport)
	case <-ctx.Done():
		forget()
		return nil, fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// replyError maps a host page error onto the playback error taxonomy. The codes are
// the ones player plugins report.
func replyError(method string, e *bridgeError) error {
	msg := e.Message
	if msg == "" {
		msg = "host page reported failure"
	}
	switch e.Code {
	case plugin.CodeNotFound:
		return fmt.Errorf("%s: %s: %w", method, msg, playback.ErrTargetNotFound)
	case plugin.CodeTransport:
		return fmt.Errorf("%s: %s: %w", method, msg, playback.ErrTransport)
	default:
		return fmt.Errorf("%s: %s: %w", method, msg, playback.ErrUnavailable)
	}
}

func (b *HostBridge) run(ctx context.Context, method string, params bridgeParams) error {
	_, err := b.call(ctx, method, params)
	return err
}

func (b *HostBridge) Play(ctx context.Context) error     { return b.run(ctx, methodPlay, bridgeParams{}) }
func (b *HostBridge) Pause(ctx context.Context) error    { return b.run(ctx, methodPause, bridgeParams{}) }
func (b *HostBridge) Resume(ctx context.Context) error   { return b.run(ctx, methodResume, bridgeParams{}) }
func (b *HostBridge) Next(ctx context.Context) error     { return b.run(ctx, methodNext, bridgeParams{}) }
func (b *HostBridge) Previous(ctx context.Context) error { return b.run(ctx, methodPrevious, bridgeParams{}) }

func (b *HostBridge) PlayQuery(ctx context.Context, query string) error {
	return b.run(ctx, methodPlayQuery, bridgeParams{Query: query})
}

func (b *HostBridge) PlayMood(ctx context.Context, mood string) error {
	return b.run(ctx, methodPlayMood, bridgeParams{Mood: mood})
}

func (b *HostBridge) PlayNthTrack(ctx context.Context, n int) error {
	return b.run(ctx, methodPlayTrack, bridgeParams{Track: n})
}

func (b *HostBridge) PlayPlaylist(ctx context.Context, name string) error {
	return b.run(ctx, methodPlayPlaylist, bridgeParams{Playlist: name})
}

func (b *HostBridge) PlayLikedSongs(ctx context.Context) error {
	return b.run(ctx, methodPlayLiked, bridgeParams{})
}

func (b *HostBridge) SearchAndPlay(ctx context.Context, query string) error {
	return b.run(ctx, methodSearchAndPlay, bridgeParams{Query: query})
}

func (b *HostBridge) SetVolume(ctx context.Context, percent int) error {
	v := playback.ClampVolume(percent)
	return b.run(ctx, methodSetVolume, bridgeParams{Volume: &v})
}

func (b *HostBridge) AdjustVolume(ctx context.Context, delta int) error {
	return b.run(ctx, methodAdjustVolume, bridgeParams{Delta: delta})
}

func (b *HostBridge) status(ctx context.Context) (playerStatus, error) {
	raw, err := b.call(ctx, methodStatus, bridgeParams{})
	if err != nil {
		return playerStatus{}, err
	}
	var st playerStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return playerStatus{}, fmt.Errorf("status: decode reply: %w: %w", playback.ErrTransport, err)
	}
	return st, nil
}

func (b *HostBridge) IsPlaying(ctx context.Context) (bool, error) {
	st, err := b.status(ctx)
	return st.Playing, err
}

// Volume reads the page's current volume.
func (b *HostBridge) Volume(ctx context.Context) (int, error) {
	st, err := b.status(ctx)
	if err != nil {
		return 0, err
	}
	if st.Volume == nil {
		return 0, fmt.Errorf("status: no volume reported: %w", playback.ErrUnavailable)
	}
	return *st.Volume, nil
}

func (b *HostBridge) navigate(ctx context.Context, page, query string) error {
	return b.run(ctx, methodNavigate, bridgeParams{Page: page, Query: query})
}

func (b *HostBridge) OpenHome(ctx context.Context) error {
	return b.navigate(ctx, playback.TargetHome, "")
}

func (b *HostBridge) OpenLibrary(ctx context.Context) error {
	return b.navigate(ctx, playback.TargetLibrary, "")
}

func (b *HostBridge) OpenEmotions(ctx context.Context) error {
	return b.navigate(ctx, playback.TargetEmotions, "")
}

func (b *HostBridge) OpenSettings(ctx context.Context) error {
	return b.navigate(ctx, playback.TargetSettings, "")
}

func (b *HostBridge) OpenSearch(ctx context.Context, query string) error {
	return b.navigate(ctx, playback.TargetSearch, query)
}

func (b *HostBridge) GoBack(ctx context.Context) error {
	return b.run(ctx, methodGoBack, bridgeParams{})
}

func (b *HostBridge) ScrollBy(ctx context.Context, pixels int) error {
	return b.run(ctx, methodScrollBy, bridgeParams{Pixels: pixels})
}

func (b *HostBridge) ScrollToSection(ctx context.Context, sectionID string) error {
	return b.run(ctx, methodScrollToSection, bridgeParams{Section: sectionID})
}

func (b *HostBridge) ScrollToEdge(ctx context.Context, top bool) error {
	return b.run(ctx, methodScrollToEdge, bridgeParams{Top: &top})
}

func (b *HostBridge) PlayItemInSection(ctx context.Context, sectionID string, n int) error {
	return b.run(ctx, methodPlayItem, bridgeParams{Section: sectionID, Item: n})
}

func (b *HostBridge) Click(ctx context.Context, targetID string) error {
	return b.run(ctx, methodClick, bridgeParams{TargetID: targetID})
}

func (b *HostBridge) StartListening(ctx context.Context) error {
	return b.run(ctx, methodStartListening, bridgeParams{})
}

func (b *HostBridge) StopListening(ctx context.Context) error {
	return b.run(ctx, methodStopListening, bridgeParams{})
}

// ElementAt returns the topmost pushed target containing the point. Later targets
// in the pushed list are on top.
func (b *HostBridge) ElementAt(x, y float64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.targets) - 1; i >= 0; i-- {
		if b.targets[i].contains(x, y) {
			return b.targets[i].ID, true
		}
	}
	return "", false
}

// Notify shows feedback on the host page. It never blocks on a reply.
func (b *HostBridge) Notify(fb control.Feedback) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}
	if err := b.write(conn, bridgeMessage{Type: msgFeedback, Feedback: &fb}); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		b.logger.Debug("feedback not delivered", "error", err)
	}
}
