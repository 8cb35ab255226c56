package extract

import (
	"regexp"
	"strings"
)

// DefaultMoveKeywords are the phrases that suggest a post describes a player move
var DefaultMoveKeywords = []string{
	"deal", "contacted", "in talks", "offer",
	"agreement", "here we go", "medical", "linked",
	"set to join", "close to", "advanced talks",
	"rejected", "negotiations", "proposal", "release clause",
}

// Tagger flags posts that plausibly describe a transfer move
type Tagger struct {
	keywords []string
	pattern  *regexp.Regexp
}

// NewTagger creates a tagger from keywords; an empty list uses DefaultMoveKeywords.
// Keywords match whole words or phrases, case-insensitively.
func NewTagger(keywords ...string) *Tagger {
	var cleaned []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultMoveKeywords...)
	}

	alternatives := make([]string, len(cleaned))
	for i, k := range cleaned {
		alternatives[i] = regexp.QuoteMeta(k)
	}

	return &Tagger{
		keywords: cleaned,
		pattern:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`),
	}
}

// Tag reports whether text contains any move keyword
func (t *Tagger) Tag(text string) bool {
	return t.pattern.MatchString(text)
}

// Match returns the first keyword found in text, lower-cased, or "" when none matches
func (t *Tagger) Match(text string) string {
	return strings.ToLower(t.pattern.FindString(text))
}

// Keywords returns the keyword list in match order
func (t *Tagger) Keywords() []string {
	out := make([]string, len(t.keywords))
	copy(out, t.keywords)
	return out
}
