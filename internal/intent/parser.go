package intent

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// rule is one entry of the ordered rule table.
type rule struct {
	name  string
	match func(p *Parser, text string) (Intent, bool)
}

// Parser matches normalized transcripts against the rule table. It holds no per-call
// state and is safe for concurrent use.
type Parser struct {
	sections sectionTable
	rules    []rule
}

// NewParser creates a Parser. extraSections adds section phrases on top of the built-in
// table, keyed by section id.
func NewParser(extraSections map[string][]string) *Parser {
	merged := make(map[string][]string, len(defaultSections)+len(extraSections))
	for id, phrases := range defaultSections {
		merged[id] = append([]string(nil), phrases...)
	}
	for id, phrases := range extraSections {
		merged[id] = append(merged[id], phrases...)
	}
	return &Parser{sections: newSectionTable(merged), rules: defaultRules()}
}

var defaultParser = NewParser(nil)

// Parse parses a transcript with the built-in tables.
func Parse(transcript string) Intent {
	return defaultParser.Parse(transcript)
}

// Parse returns the intent of the first matching rule, or Unknown with zero confidence.
func (p *Parser) Parse(transcript string) Intent {
	text := normalize(transcript)
	if text != "" {
		for _, r := range p.rules {
			if in, ok := r.match(p, text); ok {
				in.RawText = transcript
				in.Slots = in.Slots.clone()
				return in
			}
		}
	}
	return Intent{Action: Unknown, RawText: transcript}
}

// Section resolves a section phrase to its canonical id.
func (p *Parser) Section(phrase string) (string, bool) {
	return p.sections.lookup(normalize(phrase))
}

var fillerWords = map[string]bool{"please": true, "kindly": true, "plz": true, "pls": true, "zara": true}

var fillerPrefixes = []string{"can you ", "could you ", "would you ", "i want to ", "i wanna ", "lets ", "let us "}

// normalize composes, lower-cases and strips punctuation and politeness fillers.
func normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	var words []string
	for _, w := range strings.Fields(b.String()) {
		if !fillerWords[w] {
			words = append(words, w)
		}
	}
	out := strings.Join(words, " ")
	for trimmed := true; trimmed; {
		trimmed = false
		for _, prefix := range fillerPrefixes {
			if rest, ok := strings.CutPrefix(out, prefix); ok && rest != "" {
				out, trimmed = rest, true
			}
		}
	}
	return out
}

// exact matches a fixed phrase set.
func exact(action Action, phrases ...string) rule {
	return exactSlots(action, Slots{}, phrases...)
}

func exactSlots(action Action, slots Slots, phrases ...string) rule {
	set := make(map[string]bool, len(phrases))
	for _, ph := range phrases {
		set[normalize(ph)] = true
	}
	return rule{
		name: string(action),
		match: func(_ *Parser, text string) (Intent, bool) {
			if !set[text] {
				return Intent{}, false
			}
			return Intent{Action: action, Slots: slots, Confidence: ConfidenceExact}, true
		},
	}
}

// pattern matches an anchored regular expression and hands the submatches to build,
// which may still decline.
func pattern(name, expr string, build func(p *Parser, m []string) (Intent, bool)) rule {
	re := regexp.MustCompile(`^(?:` + expr + `)$`)
	return rule{
		name: name,
		match: func(p *Parser, text string) (Intent, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				return Intent{}, false
			}
			return build(p, m)
		},
	}
}

// keyword matches when any single word of the transcript is in the set.
func keyword(name string, set map[string]string, build func(value string) Intent) rule {
	return rule{
		name: name,
		match: func(_ *Parser, text string) (Intent, bool) {
			for _, w := range strings.Fields(text) {
				if v, ok := set[w]; ok {
					return build(v), true
				}
			}
			return Intent{}, false
		},
	}
}
