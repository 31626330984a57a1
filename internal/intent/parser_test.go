package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Examples(t *testing.T) {
	tests := []struct {
		text   string
		action Action
		slots  Slots
		conf   float64
	}{
		{"play the second song in global top music videos", PlayItemInSection, Slots{TrackNumber: intPtr(2), SectionID: "global-top"}, ConfidenceSlot},
		{"play item 3 in new releases", PlayItemInSection, Slots{TrackNumber: intPtr(3), SectionID: "new-releases"}, ConfidenceSlot},
		{"volume to 50", VolumeSet, Slots{Volume: intPtr(50)}, ConfidenceSlot},
		{"do something random", Unknown, Slots{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Parse(tt.text)
			require.Equal(t, tt.action, got.Action)
			require.Equal(t, tt.slots, got.Slots)
			require.Equal(t, tt.conf, got.Confidence)
			require.Equal(t, tt.text, got.RawText)
		})
	}
}

func TestParse_Actions(t *testing.T) {
	tests := []struct {
		text   string
		action Action
		slots  Slots
	}{
		// system
		{"help", Help, Slots{}},
		{"What can I say?", Help, Slots{}},
		{"stop listening", StopListening, Slots{}},
		{"stop", StopListening, Slots{}},

		// playback
		{"Play", Play, Slots{}},
		{"resume please", Play, Slots{}},
		{"pause the music", Pause, Slots{}},
		{"stop the music", Pause, Slots{}},
		{"skip this song", Next, Slots{}},
		{"previous track", Previous, Slots{}},
		{"gaana band karo", Pause, Slots{}},
		{"agla gaana", Next, Slots{}},
		{"अगला गाना", Next, Slots{}},
		{"गाना चलाओ।", Play, Slots{}},

		// volume
		{"set the volume to 30 percent", VolumeSet, Slots{Volume: intPtr(30)}},
		{"volume 80", VolumeSet, Slots{Volume: intPtr(80)}},
		{"volume up", VolumeUp, Slots{}},
		{"turn it down", VolumeDown, Slots{}},
		{"volume up by 20", VolumeUp, Slots{Volume: intPtr(20)}},
		{"lower the volume by 15", VolumeDown, Slots{Volume: intPtr(15)}},
		{"mute", VolumeSet, Slots{Volume: intPtr(0)}},
		{"unmute", VolumeSet, Slots{Volume: intPtr(70)}},
		{"awaaz badhao", VolumeUp, Slots{}},

		// scroll
		{"scroll down", ScrollDown, Slots{ScrollAmount: ScrollMedium}},
		{"scroll up a little", ScrollUp, Slots{ScrollAmount: ScrollSmall}},
		{"scroll down a lot", ScrollDown, Slots{ScrollAmount: ScrollLarge}},
		{"scroll down one page", ScrollDown, Slots{ScrollAmount: ScrollPage}},
		{"page down", ScrollDown, Slots{ScrollAmount: ScrollPage}},
		{"scroll", ScrollDown, Slots{ScrollAmount: ScrollMedium}},
		{"neeche scroll karo", ScrollDown, Slots{ScrollAmount: ScrollMedium}},
		{"upar thoda scroll karo", ScrollUp, Slots{ScrollAmount: ScrollSmall}},
		{"scroll to the top", ScrollTop, Slots{}},
		{"go to the bottom", ScrollBottom, Slots{}},
		{"scroll down to new releases", ScrollToSection, Slots{SectionID: "new-releases"}},
		{"take me to the trending section", ScrollToSection, Slots{SectionID: "global-top"}},

		// item in section
		{"play the 4th video from recently played", PlayItemInSection, Slots{TrackNumber: intPtr(4), SectionID: "recently-played"}},
		{"play song number three in recommended", PlayItemInSection, Slots{TrackNumber: intPtr(3), SectionID: "recommended"}},
		{"global top mein doosra gaana chalao", PlayItemInSection, Slots{TrackNumber: intPtr(2), SectionID: "global-top"}},

		// open and play
		{"open new releases and play the first song", OpenAndPlayItem, Slots{TrackNumber: intPtr(1), SectionID: "new-releases"}},
		{"open library and play item 2", OpenAndPlayItem, Slots{TrackNumber: intPtr(2), SectionID: "library", NavigationTarget: "library"}},

		// collections
		{"play my liked songs", PlayLikedSongs, Slots{}},
		{"play my road trip playlist", PlayPlaylist, Slots{PlaylistName: "road trip"}},
		{"play playlist called focus beats", PlayPlaylist, Slots{PlaylistName: "focus beats"}},
		{"play my favorites playlist", PlayLikedSongs, Slots{}},
		{"play something happy", PlayMood, Slots{Mood: "happy"}},
		{"play some chill music", PlayMood, Slots{Mood: "calm"}},
		{"I'm feeling sad", PlayMood, Slots{Mood: "sad"}},
		{"kuch romantic gaane sunao", PlayMood, Slots{Mood: "romantic"}},
		{"play the third song", PlayTrackNumber, Slots{TrackNumber: intPtr(3)}},
		{"play track 7", PlayTrackNumber, Slots{TrackNumber: intPtr(7)}},

		// search
		{"search for lo-fi beats", Search, Slots{Query: "lo fi beats"}},
		{"find and play despacito", SearchAndPlay, Slots{Query: "despacito"}},
		{"play shape of you by ed sheeran", SearchAndPlay, Slots{Query: "shape of you by ed sheeran"}},
		{"arijit singh ke gaane chalao", SearchAndPlay, Slots{Query: "arijit singh"}},
		{"tum hi ho bajao", SearchAndPlay, Slots{Query: "tum hi ho"}},
		{"तुम ही हो चलाओ", SearchAndPlay, Slots{Query: "तुम ही हो"}},

		// fallback
		{"play despacito", PlayQuery, Slots{Query: "despacito"}},

		// navigation
		{"go home", Navigate, Slots{NavigationTarget: "home"}},
		{"open settings", Navigate, Slots{NavigationTarget: "settings"}},
		{"show me my library", Navigate, Slots{NavigationTarget: "library"}},
		{"library kholo", Navigate, Slots{NavigationTarget: "library"}},
		{"search", Navigate, Slots{NavigationTarget: "search"}},
		{"go back", GoBack, Slots{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Parse(tt.text)
			require.Equal(t, tt.action, got.Action, "confidence %.2f", got.Confidence)
			require.Equal(t, tt.slots, got.Slots)
			require.Greater(t, got.Confidence, 0.0)
		})
	}
}

func TestParse_Confidences(t *testing.T) {
	require.Equal(t, ConfidenceExact, Parse("pause").Confidence)
	require.Equal(t, ConfidenceSlot, Parse("volume to 20").Confidence)
	require.Equal(t, ConfidenceFallback, Parse("play despacito").Confidence)
	require.Equal(t, ConfidenceKeyword, Parse("i want my library back now").Confidence)
	require.Equal(t, ConfidenceKeyword, Parse("play item 2 in mystery box").Confidence)
}

func TestParse_UnknownSectionKeepsSlug(t *testing.T) {
	got := Parse("play item 2 in mystery box section")
	require.Equal(t, PlayItemInSection, got.Action)
	require.Equal(t, "mystery-box", got.Slots.SectionID)
	require.Equal(t, 2, *got.Slots.TrackNumber)
}

func TestParse_NeverFails(t *testing.T) {
	for _, text := range []string{"", "   ", "!!!", "।", "play", "play the", "12345", "volume to", "🎵🎵"} {
		got := Parse(text)
		require.NotEmpty(t, got.Action, "input %q", text)
		if !got.Known() {
			require.Zero(t, got.Confidence)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	for _, text := range []string{
		"play the second song in global top music videos",
		"volume to 50",
		"mute",
		"scroll down a bit",
		"arijit singh ke gaane chalao",
	} {
		a, b := Parse(text), Parse(text)
		require.Equal(t, a, b)
		if a.Slots.Volume != nil {
			require.NotSame(t, a.Slots.Volume, b.Slots.Volume, "slot pointers are not shared between results")
		}
	}
}

func TestParser_ExtraSections(t *testing.T) {
	p := NewParser(map[string][]string{"podcasts": {"podcast shelf", "shows"}})

	got := p.Parse("play the first item in podcast shelf")
	require.Equal(t, PlayItemInSection, got.Action)
	require.Equal(t, "podcasts", got.Slots.SectionID)
	require.Equal(t, ConfidenceSlot, got.Confidence)

	id, ok := p.Section("Global Top")
	require.True(t, ok)
	require.Equal(t, "global-top", id)

	_, ok = p.Section("nowhere")
	require.False(t, ok)
}

func TestScrollAmountPixels(t *testing.T) {
	require.Equal(t, 150, ScrollSmall.Pixels(0))
	require.Equal(t, 400, ScrollMedium.Pixels(0))
	require.Equal(t, 400, ScrollAmount("").Pixels(0))
	require.Equal(t, 800, ScrollLarge.Pixels(0))
	require.Equal(t, 900, ScrollPage.Pixels(0))
	require.Equal(t, 720, ScrollPage.Pixels(720))
}

func TestItemIndex(t *testing.T) {
	tests := []struct {
		phrase string
		loose  bool
		want   int
		ok     bool
	}{
		{"second", false, 2, true},
		{"2nd", false, 2, true},
		{"3", false, 0, false},
		{"3", true, 3, true},
		{"item three", false, 3, true},
		{"the fifth one", false, 5, true},
		{"song number 4", false, 4, true},
		{"doosra gaana", false, 2, true},
		{"dusri", false, 2, true},
		{"songs", true, 0, false},
		{"one", true, 0, false},
	}
	for _, tt := range tests {
		n, ok := itemIndex(tt.phrase, tt.loose)
		require.Equal(t, tt.ok, ok, tt.phrase)
		require.Equal(t, tt.want, n, tt.phrase)
	}
}
