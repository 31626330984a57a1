// Package playback defines the collaborators the control engine drives: the media player,
// page navigation, the scrollable page surface and the voice listener. Implementations
// live elsewhere; this package owns their contracts and error taxonomy.
package playback

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound means the command resolved but its target does not exist, such as
	// an unknown playlist, section or an out-of-range track number.
	ErrTargetNotFound = errors.New("target not found")
	// ErrUnavailable means the player or page cannot take commands right now.
	ErrUnavailable = errors.New("unavailable")
	// ErrTransport means a network-backed operation failed.
	ErrTransport = errors.New("transport failure")
)

// Player is the media playback resource. Only command bodies run under the engine's
// flight mutex may call it.
type Player interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	PlayQuery(ctx context.Context, query string) error
	PlayMood(ctx context.Context, mood string) error
	// PlayNthTrack plays the 1-based track n of the loaded playlist.
	PlayNthTrack(ctx context.Context, n int) error
	// PlayPlaylist plays the first playlist whose name contains name, case-insensitively.
	PlayPlaylist(ctx context.Context, name string) error
	PlayLikedSongs(ctx context.Context) error
	// SearchAndPlay runs a remote search and plays the top result.
	SearchAndPlay(ctx context.Context, query string) error
	// SetVolume sets the volume in percent, clamped to [0,100].
	SetVolume(ctx context.Context, percent int) error
	AdjustVolume(ctx context.Context, delta int) error
	IsPlaying(ctx context.Context) (bool, error)
}

// Navigator moves the host between pages.
type Navigator interface {
	OpenHome(ctx context.Context) error
	OpenLibrary(ctx context.Context) error
	OpenEmotions(ctx context.Context) error
	OpenSettings(ctx context.Context) error
	OpenSearch(ctx context.Context, query string) error
	GoBack(ctx context.Context) error
}

// Page is the scrollable surface of the current page.
type Page interface {
	ScrollBy(ctx context.Context, pixels int) error
	ScrollToSection(ctx context.Context, sectionID string) error
	// ScrollToEdge scrolls to the top when top is true, else to the bottom.
	ScrollToEdge(ctx context.Context, top bool) error
	// PlayItemInSection plays the 1-based item n of a named section.
	PlayItemInSection(ctx context.Context, sectionID string, n int) error
	// Click activates the element with the given id.
	Click(ctx context.Context, targetID string) error
}

// Listener switches voice capture on the host.
type Listener interface {
	StartListening(ctx context.Context) error
	StopListening(ctx context.Context) error
}

// Navigation targets understood by Open.
const (
	TargetHome     = "home"
	TargetLibrary  = "library"
	TargetEmotions = "emotions"
	TargetSettings = "settings"
	TargetSearch   = "search"
)

// Open dispatches a navigation target name to the matching Navigator method.
func Open(ctx context.Context, nav Navigator, target, query string) error {
	switch target {
	case TargetHome:
		return nav.OpenHome(ctx)
	case TargetLibrary:
		return nav.OpenLibrary(ctx)
	case TargetEmotions:
		return nav.OpenEmotions(ctx)
	case TargetSettings:
		return nav.OpenSettings(ctx)
	case TargetSearch:
		return nav.OpenSearch(ctx, query)
	default:
		return fmt.Errorf("page %q: %w", target, ErrTargetNotFound)
	}
}

// ClampVolume limits a volume to [0,100].
func ClampVolume(percent int) int {
	return min(max(percent, 0), 100)
}
