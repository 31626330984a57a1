// Package main provides the media-control plugin. It drives the desktop
// music player through AppleScript on macOS and playerctl elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// params is the union of arguments used by the actions.
type params struct {
	Query  string `json:"query,omitempty"`
	Mood   string `json:"mood,omitempty"`
	Name   string `json:"name,omitempty"`
	N      int    `json:"n,omitempty"`
	Volume *int   `json:"volume,omitempty"`
	Delta  int    `json:"delta,omitempty"`
}

type status struct {
	Playing bool `json:"playing"`
	Volume  int  `json:"volume"`
}

const (
	codeNotFound    = "not_found"
	codeUnavailable = "unavailable"
)

// codedError carries a response code back to the executor.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

func unavailable(format string, args ...any) error {
	return &codedError{code: codeUnavailable, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &codedError{code: codeNotFound, msg: fmt.Sprintf(format, args...)}
}

// player is one platform backend.
type player interface {
	play() error
	pause() error
	next() error
	previous() error
	open(uri string) error
	status() (status, error)
	setVolume(percent int) error
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func(p player, args params) (any, error)

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"play":            func(p player, _ params) (any, error) { return nil, p.play() },
	"resume":          func(p player, _ params) (any, error) { return nil, p.play() },
	"pause":           pause,
	"next":            func(p player, _ params) (any, error) { return nil, p.next() },
	"previous":        func(p player, _ params) (any, error) { return nil, p.previous() },
	"play_query":      playQuery,
	"search_and_play": playQuery,
	"play_mood":       playMood,
	"play_playlist":   playPlaylist,
	"play_liked":      playLiked,
	"play_track":      playTrack,
	"set_volume":      setVolume,
	"adjust_volume":   adjustVolume,
	"status":          func(p player, _ params) (any, error) { return p.status() },
}

func main() {
	// Read request from stdin
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Errorf("failed to decode request: %v", err))
		return
	}

	var args params
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &args); err != nil {
			writeErrorResponse(fmt.Errorf("invalid params: %v", err))
			return
		}
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(unavailable("unknown action: %s", req.Action))
		return
	}

	data, err := handler(newPlayer(), args)
	if err != nil {
		writeErrorResponse(err)
		return
	}
	writeSuccessResponse(data)
}

func newPlayer() player {
	if runtime.GOOS == "darwin" {
		return spotifyScript{}
	}
	return playerctl{}
}

func pause(p player, _ params) (any, error) {
	st, err := p.status()
	if err != nil {
		return nil, err
	}
	if !st.Playing {
		return nil, notFound("nothing is playing")
	}
	return nil, p.pause()
}

func playQuery(p player, args params) (any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return nil, notFound("empty query")
	}
	return nil, p.open("spotify:search:" + url.PathEscape(args.Query))
}

func playMood(p player, args params) (any, error) {
	if args.Mood == "" {
		return nil, notFound("no mood given")
	}
	return nil, p.open("spotify:search:" + url.PathEscape(args.Mood+" mix"))
}

func playPlaylist(p player, args params) (any, error) {
	if args.Name == "" {
		return nil, notFound("no playlist name given")
	}
	return nil, p.open("spotify:search:" + url.PathEscape(args.Name+" playlist"))
}

func playLiked(p player, _ params) (any, error) {
	return nil, p.open("spotify:collection:tracks")
}

func playTrack(_ player, args params) (any, error) {
	return nil, unavailable("track %d: desktop players do not expose result lists", args.N)
}

func setVolume(p player, args params) (any, error) {
	if args.Volume == nil {
		return nil, errors.New("volume is required")
	}
	return nil, p.setVolume(clamp(*args.Volume))
}

func adjustVolume(p player, args params) (any, error) {
	st, err := p.status()
	if err != nil {
		return nil, err
	}
	return nil, p.setVolume(clamp(st.Volume + args.Delta))
}

func clamp(v int) int {
	return max(0, min(100, v))
}

// spotifyScript controls the Spotify desktop app through AppleScript.
type spotifyScript struct{}

func (spotifyScript) tell(cmd string) (string, error) {
	return runAppleScript(`tell application "Spotify" to ` + cmd)
}

func (s spotifyScript) play() error {
	_, err := s.tell("play")
	return err
}

func (s spotifyScript) pause() error {
	_, err := s.tell("pause")
	return err
}

func (s spotifyScript) next() error {
	_, err := s.tell("next track")
	return err
}

func (s spotifyScript) previous() error {
	_, err := s.tell("previous track")
	return err
}

func (s spotifyScript) open(uri string) error {
	_, err := s.tell(fmt.Sprintf("play track %q", uri))
	return err
}

func (s spotifyScript) status() (status, error) {
	state, err := s.tell("player state as string")
	if err != nil {
		return status{}, err
	}
	vol, err := s.tell("sound volume")
	if err != nil {
		return status{}, err
	}
	v, _ := strconv.Atoi(vol)
	return status{Playing: state == "playing", Volume: v}, nil
}

func (s spotifyScript) setVolume(percent int) error {
	_, err := s.tell(fmt.Sprintf("set sound volume to %d", percent))
	return err
}

// runAppleScript executes an AppleScript command using osascript.
func runAppleScript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", unavailable("osascript: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// playerctl controls any MPRIS player.
type playerctl struct{}

func (playerctl) run(args ...string) (string, error) {
	out, err := exec.Command("playerctl", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", notFound("playerctl %s: no player found", args[0])
		}
		return "", unavailable("playerctl: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (p playerctl) play() error {
	_, err := p.run("play")
	return err
}

func (p playerctl) pause() error {
	_, err := p.run("pause")
	return err
}

func (p playerctl) next() error {
	_, err := p.run("next")
	return err
}

func (p playerctl) previous() error {
	_, err := p.run("previous")
	return err
}

func (p playerctl) open(uri string) error {
	_, err := p.run("open", uri)
	return err
}

func (p playerctl) status() (status, error) {
	state, err := p.run("status")
	if err != nil {
		return status{}, err
	}
	vol, err := p.run("volume")
	if err != nil {
		return status{}, err
	}
	f, _ := strconv.ParseFloat(vol, 64)
	return status{Playing: state == "Playing", Volume: int(f*100 + 0.5)}, nil
}

func (p playerctl) setVolume(percent int) error {
	_, err := p.run("volume", strconv.FormatFloat(float64(percent)/100, 'f', 2, 64))
	return err
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(err error) {
	resp := Response{
		Success: false,
		Error:   err.Error(),
	}
	var ce *codedError
	if errors.As(err, &ce) {
		resp.Code = ce.code
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse(data any) {
	resp := Response{
		Success: true,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeErrorResponse(fmt.Errorf("encode result: %v", err))
			return
		}
		resp.Data = raw
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
