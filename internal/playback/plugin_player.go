package playback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin actions sent by PluginPlayer.
const (
	actionPlay          = "play"
	actionPause         = "pause"
	actionResume        = "resume"
	actionNext          = "next"
	actionPrevious      = "previous"
	actionPlayQuery     = "play_query"
	actionPlayMood      = "play_mood"
	actionPlayTrack     = "play_track"
	actionPlayPlaylist  = "play_playlist"
	actionPlayLiked     = "play_liked"
	actionSearchAndPlay = "search_and_play"
	actionSetVolume     = "set_volume"
	actionAdjustVolume  = "adjust_volume"
	actionStatus        = "status"
)

// runner is the part of plugin.Executor the player needs.
type runner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// PluginPlayer implements Player by running a player plugin once per call.
type PluginPlayer struct {
	plugin *plugin.Plugin
	exec   runner
}

// NewPluginPlayer creates a player backed by the given plugin.
func NewPluginPlayer(p *plugin.Plugin, exec *plugin.Executor) *PluginPlayer {
	return &PluginPlayer{plugin: p, exec: exec}
}

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

func (p *PluginPlayer) call(ctx context.Context, action string, args params) (*plugin.Response, error) {
	if !p.plugin.Supports(action) {
		return nil, fmt.Errorf("%s: %s does not support it: %w", action, p.plugin.Manifest.Name, ErrUnavailable)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal params: %w", action, err)
	}

	resp, err := p.exec.Execute(ctx, p.plugin, &plugin.Request{Action: action, Params: raw})
	if err != nil {
		if errors.Is(err, plugin.ErrTimeout) {
			return nil, fmt.Errorf("%s: %w: %w", action, ErrTransport, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}
	if !resp.Success {
		return nil, responseError(action, resp)
	}
	return resp, nil
}

// responseError maps a failed plugin response onto the error taxonomy.
func responseError(action string, resp *plugin.Response) error {
	msg := resp.Error
	if msg == "" {
		msg = "plugin reported failure"
	}
	switch resp.Code {
	case plugin.CodeNotFound:
		return fmt.Errorf("%s: %s: %w", action, msg, ErrTargetNotFound)
	case plugin.CodeTransport:
		return fmt.Errorf("%s: %s: %w", action, msg, ErrTransport)
	default:
		return fmt.Errorf("%s: %s: %w", action, msg, ErrUnavailable)
	}
}

func (p *PluginPlayer) run(ctx context.Context, action string, args params) error {
	_, err := p.call(ctx, action, args)
	return err
}

func (p *PluginPlayer) Play(ctx context.Context) error     { return p.run(ctx, actionPlay, params{}) }
func (p *PluginPlayer) Pause(ctx context.Context) error    { return p.run(ctx, actionPause, params{}) }
func (p *PluginPlayer) Resume(ctx context.Context) error   { return p.run(ctx, actionResume, params{}) }
func (p *PluginPlayer) Next(ctx context.Context) error     { return p.run(ctx, actionNext, params{}) }
func (p *PluginPlayer) Previous(ctx context.Context) error { return p.run(ctx, actionPrevious, params{}) }

func (p *PluginPlayer) PlayQuery(ctx context.Context, query string) error {
	return p.run(ctx, actionPlayQuery, params{Query: query})
}

func (p *PluginPlayer) PlayMood(ctx context.Context, mood string) error {
	return p.run(ctx, actionPlayMood, params{Mood: mood})
}

func (p *PluginPlayer) PlayNthTrack(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("track %d: %w", n, ErrTargetNotFound)
	}
	return p.run(ctx, actionPlayTrack, params{N: n})
}

func (p *PluginPlayer) PlayPlaylist(ctx context.Context, name string) error {
	return p.run(ctx, actionPlayPlaylist, params{Name: name})
}

func (p *PluginPlayer) PlayLikedSongs(ctx context.Context) error {
	return p.run(ctx, actionPlayLiked, params{})
}

func (p *PluginPlayer) SearchAndPlay(ctx context.Context, query string) error {
	return p.run(ctx, actionSearchAndPlay, params{Query: query})
}

func (p *PluginPlayer) SetVolume(ctx context.Context, percent int) error {
	v := ClampVolume(percent)
	return p.run(ctx, actionSetVolume, params{Volume: &v})
}

func (p *PluginPlayer) AdjustVolume(ctx context.Context, delta int) error {
	return p.run(ctx, actionAdjustVolume, params{Delta: delta})
}

// IsPlaying asks the plugin for its status.
func (p *PluginPlayer) IsPlaying(ctx context.Context) (bool, error) {
	resp, err := p.call(ctx, actionStatus, params{})
	if err != nil {
		return false, err
	}
	var st status
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		return false, fmt.Errorf("%s: parse data: %w", actionStatus, err)
	}
	return st.Playing, nil
}

// Volume asks the plugin for the current volume. It seeds the engine's volume cache.
func (p *PluginPlayer) Volume(ctx context.Context) (int, error) {
	resp, err := p.call(ctx, actionStatus, params{})
	if err != nil {
		return 0, err
	}
	var st status
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		return 0, fmt.Errorf("%s: parse data: %w", actionStatus, err)
	}
	return ClampVolume(st.Volume), nil
}
