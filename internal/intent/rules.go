package intent

import (
	"strconv"
	"strings"
)

const (
	playVerbs   = `chalao|bajao|lagao|sunao|चलाओ|बजाओ|लगाओ|सुनाओ`
	sectionPrep = `in|from|under|of|on`
)

// defaultRules returns the rule table in priority order. Hinglish and Devanagari phrasings
// sit next to their English equivalents so precedence stays in one list.
func defaultRules() []rule {
	var rules []rule
	rules = append(rules, systemRules()...)
	rules = append(rules, playbackRules()...)
	rules = append(rules, volumeRules()...)
	rules = append(rules, scrollRules()...)
	rules = append(rules, sectionItemRules()...)
	rules = append(rules, openAndPlayRules()...)
	rules = append(rules, collectionRules()...)
	rules = append(rules, searchRules()...)
	rules = append(rules, fallbackPlayRules()...)
	rules = append(rules, navigationRules()...)
	return rules
}

func systemRules() []rule {
	return []rule{
		exact(Help, "help", "help me", "what can i say", "what can you do", "show commands",
			"list commands", "commands", "madad", "मदद"),
		exact(StopListening, "stop", "stop listening", "cancel", "never mind", "nevermind",
			"go to sleep", "bas", "बस", "sunna band karo"),
	}
}

func playbackRules() []rule {
	return []rule{
		exact(Play, "play", "resume", "continue", "unpause", "play music", "play some music",
			"resume music", "resume playback", "continue playing", "start music", "start playing",
			"chalao", "gaana chalao", "gana chalao", "music chalao", "bajao", "चलाओ", "गाना चलाओ"),
		exact(Pause, "pause", "pause music", "pause the music", "pause song", "pause it",
			"stop music", "stop the music", "stop playing", "stop song", "hold on",
			"ruko", "roko", "band karo", "gaana band karo", "gaana roko", "रुको", "रोको", "बंद करो", "गाना बंद करो"),
		exact(Next, "next", "next song", "next track", "play next", "play next song", "skip",
			"skip song", "skip this", "skip this song", "skip track", "skip to next", "skip to the next song",
			"agla", "agla gaana", "agla gana", "agla chalao", "agla gaana chalao", "next wala", "अगला", "अगला गाना"),
		exact(Previous, "previous", "previous song", "previous track", "play previous",
			"play previous song", "last song", "play last song", "go back a song",
			"pichla", "pichla gaana", "pichla gana", "pichla chalao", "पिछला", "पिछला गाना"),
	}
}

func volumeSlot(action Action) func(*Parser, []string) (Intent, bool) {
	return func(_ *Parser, m []string) (Intent, bool) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Intent{}, false
		}
		return Intent{Action: action, Slots: Slots{Volume: intPtr(n)}, Confidence: ConfidenceSlot}, true
	}
}

func volumeRules() []rule {
	return []rule{
		pattern("volume_set", `(?:set |change |turn )?(?:the )?(?:volume|sound|awaaz|awaz) (?:to|at) (\d{1,3})(?: percent)?`, volumeSlot(VolumeSet)),
		pattern("volume_set", `(?:set )?(?:the )?volume (\d{1,3})(?: percent)?`, volumeSlot(VolumeSet)),
		pattern("volume_set", `(?:volume|awaaz|awaz) (\d{1,3}) (?:karo|kar do|par karo)`, volumeSlot(VolumeSet)),
		pattern("volume_up", `(?:turn )?(?:the )?volume up by (\d{1,3})(?: percent)?`, volumeSlot(VolumeUp)),
		pattern("volume_up", `(?:increase|raise) (?:the )?volume by (\d{1,3})(?: percent)?`, volumeSlot(VolumeUp)),
		pattern("volume_down", `(?:turn )?(?:the )?volume down by (\d{1,3})(?: percent)?`, volumeSlot(VolumeDown)),
		pattern("volume_down", `(?:decrease|lower|reduce) (?:the )?volume by (\d{1,3})(?: percent)?`, volumeSlot(VolumeDown)),
		exact(VolumeUp, "volume up", "louder", "turn it up", "turn up", "turn up the volume",
			"turn the volume up", "increase volume", "increase the volume", "raise volume",
			"raise the volume", "awaaz badhao", "awaz badhao", "volume badhao", "आवाज़ बढ़ाओ", "आवाज बढ़ाओ"),
		exact(VolumeDown, "volume down", "quieter", "softer", "turn it down", "turn down",
			"turn down the volume", "turn the volume down", "decrease volume", "decrease the volume",
			"lower volume", "lower the volume", "reduce volume", "reduce the volume",
			"awaaz kam karo", "awaz kam karo", "volume kam karo", "आवाज़ कम करो", "आवाज कम करो"),
		exactSlots(VolumeSet, Slots{Volume: intPtr(0)}, "mute", "mute it", "mute the music",
			"mute volume", "silence", "awaaz band karo", "आवाज़ बंद करो"),
		exactSlots(VolumeSet, Slots{Volume: intPtr(70)}, "unmute", "unmute it", "sound on", "awaaz kholo"),
	}
}

func scrollIntent(dir string, amount ScrollAmount) Intent {
	action := ScrollDown
	switch dir {
	case "up", "upar", "ऊपर":
		action = ScrollUp
	}
	return Intent{Action: action, Slots: Slots{ScrollAmount: amount}, Confidence: ConfidenceSlot}
}

func scrollRules() []rule {
	return []rule{
		exact(ScrollTop, "scroll to top", "scroll to the top", "go to top", "go to the top",
			"back to top", "scroll up to the top", "top of the page", "sabse upar"),
		exact(ScrollBottom, "scroll to bottom", "scroll to the bottom", "go to bottom",
			"go to the bottom", "scroll down to the bottom", "bottom of the page", "sabse neeche"),
		exactSlots(ScrollDown, Slots{ScrollAmount: ScrollPage}, "page down", "next page"),
		exactSlots(ScrollUp, Slots{ScrollAmount: ScrollPage}, "page up"),
		pattern("scroll_to_section", `(?:scroll|go|jump|take me|skip)(?: down| up)? to (?:the )?(.+?)(?: section)?`, func(p *Parser, m []string) (Intent, bool) {
			id, ok := p.sections.lookup(m[1])
			if !ok {
				return Intent{}, false
			}
			return Intent{Action: ScrollToSection, Slots: Slots{SectionID: id}, Confidence: ConfidenceSlot}, true
		}),
		pattern("scroll", `scroll (up|down)(?: (.+))?`, func(_ *Parser, m []string) (Intent, bool) {
			return scrollIntent(m[1], scrollMagnitude(m[2])), true
		}),
		pattern("scroll", `(up|down) (?:a little|a bit|a lot)`, func(_ *Parser, m []string) (Intent, bool) {
			return scrollIntent(m[1], scrollMagnitude(m[0])), true
		}),
		pattern("scroll", `(upar|neeche|niche|ऊपर|नीचे)(?: (thoda|bahut|zyada))? (?:scroll|scroll karo|karo|jao)`, func(_ *Parser, m []string) (Intent, bool) {
			return scrollIntent(m[1], scrollMagnitude(m[2])), true
		}),
		exactSlots(ScrollDown, Slots{ScrollAmount: ScrollMedium}, "scroll"),
	}
}

// sectionItem builds a play-item-in-section intent. Unknown sections still resolve to a
// slug at keyword confidence so the page can report the missing target.
func sectionItem(p *Parser, item, section string, requireKnown bool) (Intent, bool) {
	n, ok := itemIndex(item, true)
	if !ok {
		return Intent{}, false
	}
	conf := ConfidenceSlot
	id, known := p.sections.lookup(section)
	if !known {
		if requireKnown {
			return Intent{}, false
		}
		id, conf = slug(section), ConfidenceKeyword
	}
	return Intent{
		Action:     PlayItemInSection,
		Slots:      Slots{TrackNumber: intPtr(n), SectionID: id},
		Confidence: conf,
	}, true
}

func sectionItemRules() []rule {
	return []rule{
		pattern("play_item_in_section", `play (?:the )?(.+?) (?:`+sectionPrep+`) (?:the )?(.+)`, func(p *Parser, m []string) (Intent, bool) {
			return sectionItem(p, m[1], m[2], false)
		}),
		pattern("play_item_in_section", `(.+) (?:mein|me|में) (.+) (?:`+playVerbs+`)`, func(p *Parser, m []string) (Intent, bool) {
			return sectionItem(p, m[2], m[1], true)
		}),
	}
}

func openAndPlayRules() []rule {
	return []rule{
		pattern("open_and_play_item", `(?:open|go to|show) (?:the |my )?(.+?)(?: section| page| tab)? and play (?:the )?(.+)`, func(p *Parser, m []string) (Intent, bool) {
			n, ok := itemIndex(m[2], true)
			if !ok {
				return Intent{}, false
			}
			slots := Slots{TrackNumber: intPtr(n)}
			if target, ok := navTargets[m[1]]; ok {
				slots.NavigationTarget = target
				slots.SectionID = target
			} else if id, ok := p.sections.lookup(m[1]); ok {
				slots.SectionID = id
			} else {
				slots.SectionID = slug(m[1])
			}
			return Intent{Action: OpenAndPlayItem, Slots: slots, Confidence: ConfidenceSlot}, true
		}),
	}
}

var likedPhrases = map[string]bool{
	"liked songs": true, "liked": true, "likes": true, "favorites": true, "favourites": true,
	"favorite songs": true, "favourite songs": true, "liked music": true,
}

func collectionRules() []rule {
	playlist := func(_ *Parser, m []string) (Intent, bool) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			return Intent{}, false
		}
		if likedPhrases[name] {
			return Intent{Action: PlayLikedSongs, Confidence: ConfidenceSlot}, true
		}
		return Intent{Action: PlayPlaylist, Slots: Slots{PlaylistName: name}, Confidence: ConfidenceSlot}, true
	}
	mood := func(_ *Parser, m []string) (Intent, bool) {
		tag, ok := moodOf(m[1])
		if !ok {
			return Intent{}, false
		}
		return Intent{Action: PlayMood, Slots: Slots{Mood: tag}, Confidence: ConfidenceSlot}, true
	}
	return []rule{
		exact(PlayLikedSongs, "play liked songs", "play my liked songs", "play my favorites",
			"play my favourites", "play favorites", "play favourites", "play songs i like",
			"play my likes", "liked songs chalao", "pasandida gaane chalao"),
		pattern("play_playlist", `play (?:my )?playlist (?:called |named )?(.+)`, playlist),
		pattern("play_playlist", `play (?:my |the )?(.+) playlist`, playlist),
		pattern("play_playlist", `(?:my )?(.+) playlist (?:`+playVerbs+`)`, playlist),
		pattern("play_mood", `play (?:me )?(?:something |some |a )?(.+?)(?: music| songs| song| tunes| vibes| mix)?`, mood),
		pattern("play_mood", `(?:i am|im|i feel|i m) (?:feeling )?(.+)`, mood),
		pattern("play_mood", `(?:kuch )?(.+?)(?: gaane| songs)? (?:sunao|chalao|bajao)`, mood),
		pattern("play_track_number", `play (?:the )?(.+)`, func(_ *Parser, m []string) (Intent, bool) {
			n, ok := itemIndex(m[1], false)
			if !ok {
				return Intent{}, false
			}
			return Intent{Action: PlayTrackNumber, Slots: Slots{TrackNumber: intPtr(n)}, Confidence: ConfidenceSlot}, true
		}),
	}
}

// songSuffixes are dropped from transliterated "X chalao" queries.
var songSuffixes = []string{" wala gaana", " ke gaane", " ka gaana", " ki gaane", " gaana", " gaane", " songs", " song"}

func query(action Action) func(*Parser, []string) (Intent, bool) {
	return func(_ *Parser, m []string) (Intent, bool) {
		q := strings.TrimSpace(m[1])
		for _, suffix := range songSuffixes {
			if trimmed, ok := strings.CutSuffix(q, suffix); ok && trimmed != "" {
				q = trimmed
				break
			}
		}
		if q == "" {
			return Intent{}, false
		}
		return Intent{Action: action, Slots: Slots{Query: q}, Confidence: ConfidenceSlot}, true
	}
}

func searchRules() []rule {
	return []rule{
		pattern("search_and_play", `(?:search|find|look up) and play (.+)`, query(SearchAndPlay)),
		pattern("search_and_play", `play (?:the )?song (.+)`, query(SearchAndPlay)),
		pattern("search_and_play", `play (.+ by .+)`, query(SearchAndPlay)),
		pattern("search", `(?:search for|search|find|look up|look for) (.+)`, query(Search)),
		pattern("search", `(.+) (?:search karo|dhundo|khojo|खोजो|ढूंढो)`, query(Search)),
		pattern("search_and_play", `(.+) (?:`+playVerbs+`)`, query(SearchAndPlay)),
	}
}

func fallbackPlayRules() []rule {
	return []rule{
		pattern("play_query", `play (.+)`, func(_ *Parser, m []string) (Intent, bool) {
			return Intent{Action: PlayQuery, Slots: Slots{Query: m[1]}, Confidence: ConfidenceFallback}, true
		}),
	}
}

func navigate(target string) Intent {
	return Intent{Action: Navigate, Slots: Slots{NavigationTarget: target}, Confidence: ConfidenceSlot}
}

func navigationRules() []rule {
	nav := func(_ *Parser, m []string) (Intent, bool) {
		target, ok := navTargets[m[1]]
		if !ok {
			return Intent{}, false
		}
		return navigate(target), true
	}
	return []rule{
		exact(GoBack, "back", "go back", "previous page", "take me back", "peeche jao",
			"wapas jao", "wapas", "वापस", "वापस जाओ"),
		pattern("navigate", `(?:(?:open|go to|go|show me|show|take me to|navigate to|switch to) )?(?:the |my )?(\S+)(?: page| screen| tab)?`, nav),
		pattern("navigate", `(\S+)(?: page)? (?:kholo|pe jao|par jao|dikhao|खोलो)`, nav),
		keyword("navigate", navTargets, func(target string) Intent {
			in := navigate(target)
			in.Confidence = ConfidenceKeyword
			return in
		}),
	}
}
