package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/intent"
	"github.com/ayusman/mudra/internal/playback"
)

// ErrCooldown is returned by a body that ran again inside its own per-action cooldown.
var ErrCooldown = errors.New("action cooling down")

// Body is a command's side effect. It runs under the Flight.
type Body func(ctx context.Context) error

// Deps are the collaborators command bodies drive. Any of them may be nil; bodies that
// need a missing one fail with playback.ErrUnavailable.
type Deps struct {
	Player    playback.Player
	Navigator playback.Navigator
	Page      playback.Page
	Listener  playback.Listener
}

// ExecutorConfig tunes command bodies.
type ExecutorConfig struct {
	// ToggleCooldown is the minimum time between two play/pause toggles.
	ToggleCooldown time.Duration
	// VolumeStep is the relative change for volume up/down without an amount.
	VolumeStep int
	// GestureScroll is the scroll distance for scroll gestures and unqualified voice scrolls.
	GestureScroll intent.ScrollAmount
	// Viewport is the page height used for page-sized scrolls.
	Viewport int
}

// DefaultExecutorConfig returns the stock body settings.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		ToggleCooldown: 3 * time.Second,
		VolumeStep:     10,
		GestureScroll:  intent.ScrollMedium,
	}
}

// volumeReader is implemented by players that can report their volume.
type volumeReader interface {
	Volume(ctx context.Context) (int, error)
}

// Executor maps actions to bodies. It keeps the per-action state the bodies share: the
// toggle cooldown clock and the last known volume.
type Executor struct {
	deps   Deps
	config ExecutorConfig
	now    func() time.Time

	mu          sync.Mutex
	volume      int
	volumeKnown bool
	lastToggle  time.Time
}

// NewExecutor creates an Executor. now may be nil for the wall clock.
func NewExecutor(deps Deps, config ExecutorConfig, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	if config.VolumeStep == 0 {
		config.VolumeStep = DefaultExecutorConfig().VolumeStep
	}
	if config.GestureScroll == "" {
		config.GestureScroll = intent.ScrollMedium
	}
	return &Executor{deps: deps, config: config, now: now}
}

func unavailable(what string) error {
	return fmt.Errorf("no %s connected: %w", what, playback.ErrUnavailable)
}

func missing(what string) error {
	return fmt.Errorf("%s: %w", what, playback.ErrTargetNotFound)
}

func (x *Executor) withPlayer(fn func(context.Context, playback.Player) error) Body {
	return func(ctx context.Context) error {
		if x.deps.Player == nil {
			return unavailable("player")
		}
		return fn(ctx, x.deps.Player)
	}
}

func (x *Executor) withPage(fn func(context.Context, playback.Page) error) Body {
	return func(ctx context.Context) error {
		if x.deps.Page == nil {
			return unavailable("page")
		}
		return fn(ctx, x.deps.Page)
	}
}

func (x *Executor) withNavigator(fn func(context.Context, playback.Navigator) error) Body {
	return func(ctx context.Context) error {
		if x.deps.Navigator == nil {
			return unavailable("navigator")
		}
		return fn(ctx, x.deps.Navigator)
	}
}

func (x *Executor) withListener(fn func(context.Context, playback.Listener) error) Body {
	return func(ctx context.Context) error {
		if x.deps.Listener == nil {
			return unavailable("voice listener")
		}
		return fn(ctx, x.deps.Listener)
	}
}

// Body returns the side effect for cmd, or false when the action has none.
func (x *Executor) Body(cmd Command) (Body, bool) {
	slots := cmd.Slots

	switch cmd.Action {
	case ActionTogglePlayPause:
		return x.withPlayer(x.toggle), true
	case ActionActivateVoice:
		return x.withListener(func(ctx context.Context, l playback.Listener) error {
			return l.StartListening(ctx)
		}), true
	case ActionClick:
		return x.withPage(func(ctx context.Context, p playback.Page) error {
			if cmd.Target == "" {
				return missing("nothing clickable under the cursor")
			}
			return p.Click(ctx, cmd.Target)
		}), true
	}

	switch intent.Action(cmd.Action) {
	case intent.Help:
		return func(context.Context) error { return nil }, true
	case intent.StopListening:
		return x.withListener(func(ctx context.Context, l playback.Listener) error {
			return l.StopListening(ctx)
		}), true

	case intent.Play:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.Play(ctx) }), true
	case intent.Pause:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.Pause(ctx) }), true
	case intent.Next:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.Next(ctx) }), true
	case intent.Previous:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.Previous(ctx) }), true

	case intent.VolumeUp, intent.VolumeDown:
		delta := x.config.VolumeStep
		if slots.Volume != nil {
			delta = *slots.Volume
		}
		if intent.Action(cmd.Action) == intent.VolumeDown {
			delta = -delta
		}
		return x.withPlayer(func(ctx context.Context, p playback.Player) error {
			return x.adjustVolume(ctx, p, delta)
		}), true
	case intent.VolumeSet:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error {
			if slots.Volume == nil {
				return missing("volume level")
			}
			return x.setVolume(ctx, p, *slots.Volume)
		}), true

	case intent.ScrollUp, intent.ScrollDown:
		amount := slots.ScrollAmount
		if amount == "" {
			amount = x.config.GestureScroll
		}
		px := amount.Pixels(x.config.Viewport)
		if intent.Action(cmd.Action) == intent.ScrollUp {
			px = -px
		}
		return x.withPage(func(ctx context.Context, p playback.Page) error { return p.ScrollBy(ctx, px) }), true
	case intent.ScrollTop, intent.ScrollBottom:
		top := intent.Action(cmd.Action) == intent.ScrollTop
		return x.withPage(func(ctx context.Context, p playback.Page) error { return p.ScrollToEdge(ctx, top) }), true
	case intent.ScrollToSection:
		return x.withPage(func(ctx context.Context, p playback.Page) error {
			return p.ScrollToSection(ctx, slots.SectionID)
		}), true

	case intent.PlayItemInSection:
		return x.withPage(func(ctx context.Context, p playback.Page) error {
			if slots.TrackNumber == nil {
				return missing("item number")
			}
			return p.PlayItemInSection(ctx, slots.SectionID, *slots.TrackNumber)
		}), true
	case intent.OpenAndPlayItem:
		return x.openAndPlay(slots), true

	case intent.PlayPlaylist:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error {
			return p.PlayPlaylist(ctx, slots.PlaylistName)
		}), true
	case intent.PlayLikedSongs:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.PlayLikedSongs(ctx) }), true
	case intent.PlayMood:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.PlayMood(ctx, slots.Mood) }), true
	case intent.PlayTrackNumber:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error {
			if slots.TrackNumber == nil {
				return missing("track number")
			}
			return p.PlayNthTrack(ctx, *slots.TrackNumber)
		}), true
	case intent.SearchAndPlay:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error {
			return p.SearchAndPlay(ctx, slots.Query)
		}), true
	case intent.PlayQuery:
		return x.withPlayer(func(ctx context.Context, p playback.Player) error { return p.PlayQuery(ctx, slots.Query) }), true

	case intent.Search:
		return x.withNavigator(func(ctx context.Context, n playback.Navigator) error {
			return n.OpenSearch(ctx, slots.Query)
		}), true
	case intent.Navigate:
		return x.withNavigator(func(ctx context.Context, n playback.Navigator) error {
			return playback.Open(ctx, n, slots.NavigationTarget, slots.Query)
		}), true
	case intent.GoBack:
		return x.withNavigator(func(ctx context.Context, n playback.Navigator) error { return n.GoBack(ctx) }), true
	}
	return nil, false
}

// toggle pauses or resumes. It refuses inside its own cooldown because an accidental
// double toggle undoes itself.
// toggle pauses or resumes. The cooldown starts only when the player call succeeds.
func (x *Executor) toggle(ctx context.Context, p playback.Player) error {
	x.mu.Lock()
	now := x.now()
	if !x.lastToggle.IsZero() && now.Sub(x.lastToggle) < x.config.ToggleCooldown {
		x.mu.Unlock()
		return fmt.Errorf("toggle play/pause: %w", ErrCooldown)
	}
	x.mu.Unlock()

	playing, err := p.IsPlaying(ctx)
	if err != nil {
		return fmt.Errorf("toggle play/pause: %w", err)
	}
	if playing {
		err = p.Pause(ctx)
	} else {
		err = p.Resume(ctx)
	}
	if err != nil {
		return err
	}

	x.mu.Lock()
	x.lastToggle = now
	x.mu.Unlock()
	return nil
}

func (x *Executor) openAndPlay(slots intent.Slots) Body {
	return func(ctx context.Context) error {
		if x.deps.Page == nil {
			return unavailable("page")
		}
		if slots.TrackNumber == nil {
			return missing("item number")
		}
		if slots.NavigationTarget != "" {
			if x.deps.Navigator == nil {
				return unavailable("navigator")
			}
			if err := playback.Open(ctx, x.deps.Navigator, slots.NavigationTarget, ""); err != nil {
				return err
			}
		} else if err := x.deps.Page.ScrollToSection(ctx, slots.SectionID); err != nil {
			return err
		}
		return x.deps.Page.PlayItemInSection(ctx, slots.SectionID, *slots.TrackNumber)
	}
}

// adjustVolume applies a relative change from the cached volume so changes from both
// channels compose. Without a known volume it falls back to the player's own adjustment.
func (x *Executor) adjustVolume(ctx context.Context, p playback.Player, delta int) error {
	cur, known := x.Volume()
	if !known {
		if r, ok := p.(volumeReader); ok {
			if v, err := r.Volume(ctx); err == nil {
				cur, known = v, true
			}
		}
	}
	if !known {
		return p.AdjustVolume(ctx, delta)
	}
	return x.setVolume(ctx, p, cur+delta)
}

func (x *Executor) setVolume(ctx context.Context, p playback.Player, v int) error {
	v = playback.ClampVolume(v)
	if err := p.SetVolume(ctx, v); err != nil {
		return err
	}
	x.SeedVolume(v)
	return nil
}

// Volume returns the cached volume.
func (x *Executor) Volume() (int, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.volume, x.volumeKnown
}

// SeedVolume sets the cached volume.
func (x *Executor) SeedVolume(v int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.volume, x.volumeKnown = playback.ClampVolume(v), true
}
