package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/rumorlens/internal/model"
)

// ErrEmptyReply is returned when the service answers with no text
var ErrEmptyReply = errors.New("empty reply from text-generation service")

// ParseError reports a reply that holds no decodable JSON object
type ParseError struct {
	Raw string // Reply text as received
	Err error  // Last decode error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no JSON object in reply (%d bytes): %v", len(e.Raw), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// objectSpan finds the first '{' through the last '}', across lines
var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

// ParseReply decodes a model reply into a field map. The whole reply is
// tried first; failing that, the widest {...} span inside it.
func ParseReply(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyReply
	}

	fields, err := decodeObject(trimmed)
	if err == nil {
		return fields, nil
	}

	span := objectSpan.FindString(trimmed)
	if span == "" {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	fields, err = decodeObject(span)
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return fields, nil
}

func decodeObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("reply is a JSON %T, not an object", v)
	}
	return obj, nil
}

// Field aliases, normalised by fieldKey. The first alias of each entry is
// the key the prompt asks for; the rest are older or alternative spellings.
var fieldAliases = map[string][]string{
	"player":           {"player", "playername"},
	"source":           {"sourceclub", "fromclub", "originclub"},
	"destination":      {"destinationclub", "toclub"},
	"status":           {"status"},
	"certainty":        {"certaintyscore", "certainty", "score"},
	"looksLikeMove":    {"lookslikemove", "lookslikemovellm", "istransferrumor"},
	"sourceGuess":      {"sourceclubguess", "fromclubguess", "originclubguess"},
	"destinationGuess": {"destinationclubguess", "toclubguess"},
}

// fieldKey lower-cases k and drops separators so From_Club, fromClub and from club agree
func fieldKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lookup returns the first present alias value for field
func lookup(fields map[string]any, field string) (any, bool) {
	for _, alias := range fieldAliases[field] {
		if v, ok := fields[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// EntityFromFields maps a decoded reply onto an Entity. Missing keys become
// absent fields; strings holding numbers or booleans are coerced; the score
// is clamped to [0, 1]; empty guesses become "Unknown".
func EntityFromFields(fields map[string]any) model.Entity {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		normalized[fieldKey(k)] = v
	}

	entity := model.DefaultEntity()

	if v, ok := lookup(normalized, "player"); ok {
		entity.Player = stringValue(v)
	}
	if v, ok := lookup(normalized, "source"); ok {
		entity.SourceClub = stringValue(v)
	}
	if v, ok := lookup(normalized, "destination"); ok {
		entity.DestinationClub = stringValue(v)
	}
	if v, ok := lookup(normalized, "status"); ok {
		if s := stringValue(v); s != nil {
			status, _ := model.ParseStatus(*s)
			entity.Status = model.StatusPtr(status)
		}
	}
	if v, ok := lookup(normalized, "certainty"); ok {
		entity.CertaintyScore = clampScore(floatValue(v))
	}
	if v, ok := lookup(normalized, "looksLikeMove"); ok {
		entity.LooksLikeMove = boolValue(v)
	}
	if v, ok := lookup(normalized, "sourceGuess"); ok {
		if s := stringValue(v); s != nil {
			entity.SourceClubGuess = *s
		}
	}
	if v, ok := lookup(normalized, "destinationGuess"); ok {
		if s := stringValue(v); s != nil {
			entity.DestinationClubGuess = *s
		}
	}

	return entity
}

// stringValue returns nil for JSON null, blanks and textual nulls
func stringValue(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "", "null", "none", "n/a":
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		return nil
	}
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		if strings.HasSuffix(strings.TrimSpace(t), "%") {
			f /= 100
		}
		return f
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return strings.EqualFold(strings.TrimSpace(t), "yes")
		}
		return b
	case float64:
		return t != 0
	}
	return false
}

func clampScore(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
