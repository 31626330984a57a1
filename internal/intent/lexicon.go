package intent

import (
	"sort"
	"strconv"
	"strings"
)

// ordinals maps spoken index words to 1-based positions. Cardinal words are only accepted
// next to an item noun ("item three"), see itemIndex.
var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"pehla": 1, "pehli": 1, "pahla": 1, "doosra": 2, "dusra": 2, "doosri": 2, "dusri": 2,
	"teesra": 3, "tisra": 3, "teesri": 3, "chautha": 4, "chauthi": 4, "paanchva": 5, "panchva": 5,
	"पहला": 1, "पहली": 1, "दूसरा": 2, "दूसरी": 2, "तीसरा": 3, "तीसरी": 3, "चौथा": 4, "पांचवा": 5,
}

var cardinals = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"ek": 1, "do": 2, "teen": 3, "char": 4, "paanch": 5,
}

// itemNouns may follow or precede an index word.
var itemNouns = map[string]bool{
	"item": true, "items": true, "song": true, "track": true, "video": true, "one": true,
	"result": true, "number": true, "no": true, "card": true, "gaana": true, "gana": true, "गाना": true,
}

// ordinal parses a single index token. Numerals and cardinals are accepted only when loose.
func ordinal(tok string, loose bool) (int, bool) {
	if n, ok := ordinals[tok]; ok {
		return n, true
	}
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if num, ok := strings.CutSuffix(tok, suffix); ok {
			if n, err := strconv.Atoi(num); err == nil && n > 0 {
				return n, true
			}
		}
	}
	if !loose {
		return 0, false
	}
	if n, ok := cardinals[tok]; ok {
		return n, true
	}
	if n, err := strconv.Atoi(tok); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}

// itemIndex extracts a position from phrases such as "second song", "item 3",
// "song number 4" or "doosra gaana". A lone token must be an ordinal, or a numeral when loose.
func itemIndex(phrase string, loose bool) (int, bool) {
	var words []string
	for _, w := range strings.Fields(phrase) {
		if w != "the" {
			words = append(words, w)
		}
	}
	switch len(words) {
	case 1:
		if n, ok := ordinal(words[0], false); ok {
			return n, true
		}
		// Bare numerals are positions only where the phrase already implies one.
		if n, err := strconv.Atoi(words[0]); loose && err == nil && n > 0 {
			return n, true
		}
	case 2:
		if itemNouns[words[0]] && words[0] != "one" {
			return ordinal(words[1], true)
		}
		if itemNouns[words[1]] {
			return ordinal(words[0], loose)
		}
	case 3:
		if itemNouns[words[0]] && words[1] == "number" {
			return ordinal(words[2], true)
		}
	}
	return 0, false
}

// defaultSections maps canonical section ids to the phrases that name them.
var defaultSections = map[string][]string{
	"global-top":      {"global top", "global", "trending", "top charts", "global charts", "top hits", "global top music videos"},
	"india-top":       {"india top", "top india", "bollywood", "hindi top", "desi hits"},
	"new-releases":    {"new releases", "new release", "new music", "latest", "latest releases", "fresh releases"},
	"recently-played": {"recently played", "recent", "recents", "history", "recent songs"},
	"recommended":     {"recommended", "recommendations", "for you", "made for you", "suggested"},
	"top-artists":     {"top artists", "popular artists", "artists"},
	"mood-mixes":      {"mood mixes", "mood mix", "moods mix"},
	"your-playlists":  {"your playlists", "my playlists", "playlists"},
	"liked-songs":     {"liked songs", "liked", "favorites", "favourites"},
}

type synonym struct {
	phrase string
	id     string
}

// sectionTable resolves free phrases to section ids by whole-word containment, longest
// synonym first.
type sectionTable []synonym

func newSectionTable(sections map[string][]string) sectionTable {
	var t sectionTable
	for id, phrases := range sections {
		for _, p := range phrases {
			if p = normalize(p); p != "" {
				t = append(t, synonym{phrase: p, id: id})
			}
		}
		if p := normalize(strings.ReplaceAll(id, "-", " ")); p != "" {
			t = append(t, synonym{phrase: p, id: id})
		}
	}
	sort.SliceStable(t, func(i, j int) bool {
		if len(t[i].phrase) != len(t[j].phrase) {
			return len(t[i].phrase) > len(t[j].phrase)
		}
		return t[i].phrase < t[j].phrase
	})
	return t
}

func (t sectionTable) lookup(phrase string) (string, bool) {
	padded := " " + phrase + " "
	for _, s := range t {
		if strings.Contains(padded, " "+s.phrase+" ") {
			return s.id, true
		}
	}
	return "", false
}

// slug turns an unknown section phrase into an id the host can still try to resolve.
func slug(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 && (words[len(words)-1] == "section" || words[len(words)-1] == "tab") {
		words = words[:len(words)-1]
	}
	return strings.Join(words, "-")
}

// moods maps mood words to the canonical mood tags the player understands.
var moods = map[string]string{
	"happy": "happy", "cheerful": "happy", "joyful": "happy", "khush": "happy",
	"sad": "sad", "melancholy": "sad", "emotional": "sad", "dukhi": "sad", "udaas": "sad",
	"calm": "calm", "chill": "calm", "relaxing": "calm", "relaxed": "calm", "peaceful": "calm", "soothing": "calm",
	"energetic": "energetic", "upbeat": "energetic", "workout": "energetic", "gym": "energetic", "pump up": "energetic",
	"romantic": "romantic", "love": "romantic", "pyaar": "romantic",
	"focus": "focus", "study": "focus", "concentration": "focus",
	"party": "party", "dance": "party",
}

func moodOf(phrase string) (string, bool) {
	words := strings.Fields(phrase)
	var kept []string
	for _, w := range words {
		switch w {
		case "some", "something", "a", "bit", "kind", "of", "kinda", "very", "really", "kuch":
			continue
		}
		kept = append(kept, w)
	}
	m, ok := moods[strings.Join(kept, " ")]
	return m, ok
}

// navTargets maps page words to navigation targets.
var navTargets = map[string]string{
	"home": "home", "homepage": "home", "ghar": "home", "होम": "home",
	"library": "library", "collection": "library", "लाइब्रेरी": "library",
	"emotions": "emotions", "emotion": "emotions", "moods": "emotions",
	"settings": "settings", "setting": "settings", "preferences": "settings", "सेटिंग्स": "settings",
	"search": "search",
}

// scrollMagnitude grades the words after a scroll direction.
func scrollMagnitude(rest string) ScrollAmount {
	padded := " " + rest + " "
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(padded, " "+w+" ") {
				return true
			}
		}
		return false
	}
	switch {
	case has("little", "bit", "slightly", "thoda", "thoda sa"):
		return ScrollSmall
	case has("lot", "way", "much", "far", "bahut", "zyada"):
		return ScrollLarge
	case has("page", "screen"):
		return ScrollPage
	default:
		return ScrollMedium
	}
}
