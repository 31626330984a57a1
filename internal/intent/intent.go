// Package intent turns voice transcripts into structured commands. Parsing is a pure
// function over an ordered rule table: the first rule that matches wins.
package intent

// Action is the command a transcript resolves to.
type Action string

const (
	Unknown           Action = "unknown"
	Help              Action = "help"
	StopListening     Action = "stop_listening"
	Play              Action = "play"
	Pause             Action = "pause"
	Next              Action = "next"
	Previous          Action = "previous"
	VolumeUp          Action = "volume_up"
	VolumeDown        Action = "volume_down"
	VolumeSet         Action = "volume_set"
	ScrollUp          Action = "scroll_up"
	ScrollDown        Action = "scroll_down"
	ScrollTop         Action = "scroll_top"
	ScrollBottom      Action = "scroll_bottom"
	ScrollToSection   Action = "scroll_to_section"
	PlayItemInSection Action = "play_item_in_section"
	OpenAndPlayItem   Action = "open_and_play_item"
	PlayPlaylist      Action = "play_playlist"
	PlayLikedSongs    Action = "play_liked_songs"
	PlayMood          Action = "play_mood"
	PlayTrackNumber   Action = "play_track_number"
	Search            Action = "search"
	SearchAndPlay     Action = "search_and_play"
	PlayQuery         Action = "play_query"
	Navigate          Action = "navigate"
	GoBack            Action = "go_back"
)

// Confidence levels by how a rule matched.
const (
	ConfidenceExact    = 0.95
	ConfidenceSlot     = 0.9
	ConfidenceKeyword  = 0.8
	ConfidenceFallback = 0.6
)

// ScrollAmount is a coarse scroll magnitude.
type ScrollAmount string

const (
	ScrollSmall  ScrollAmount = "small"
	ScrollMedium ScrollAmount = "medium"
	ScrollLarge  ScrollAmount = "large"
	ScrollPage   ScrollAmount = "page"
)

// Pixels converts the amount to a pixel distance. viewport is the page height used for
// ScrollPage; zero selects 900.
func (a ScrollAmount) Pixels(viewport int) int {
	switch a {
	case ScrollSmall:
		return 150
	case ScrollLarge:
		return 800
	case ScrollPage:
		if viewport <= 0 {
			return 900
		}
		return viewport
	default:
		return 400
	}
}

// Slots are the typed values extracted from a transcript. Unset numeric slots are nil.
type Slots struct {
	Query            string       `json:"query,omitempty"`
	Mood             string       `json:"mood,omitempty"`
	Volume           *int         `json:"volume,omitempty"`
	NavigationTarget string       `json:"navigation_target,omitempty"`
	TrackNumber      *int         `json:"track_number,omitempty"`
	PlaylistName     string       `json:"playlist_name,omitempty"`
	SectionID        string       `json:"section_id,omitempty"`
	ScrollAmount     ScrollAmount `json:"scroll_amount,omitempty"`
}

func (s Slots) clone() Slots {
	if s.Volume != nil {
		s.Volume = intPtr(*s.Volume)
	}
	if s.TrackNumber != nil {
		s.TrackNumber = intPtr(*s.TrackNumber)
	}
	return s
}

// Intent is the parse result for one transcript.
type Intent struct {
	Action     Action  `json:"action"`
	Slots      Slots   `json:"slots"`
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// Known reports whether a rule matched.
func (i Intent) Known() bool {
	return i.Action != Unknown && i.Action != ""
}

func intPtr(n int) *int {
	return &n
}
