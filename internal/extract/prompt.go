package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/rumorlens/internal/model"
)

// SystemPrompt frames the model for every extraction request
const SystemPrompt = "You extract structured football transfer info from tweets."

// payloadDelimiter fences the post inside the prompt
const payloadDelimiter = "'''"

// BuildPrompt embeds text in the extraction instructions
func BuildPrompt(text string) string {
	// A post containing the fence would let it close the payload early
	safe := strings.ReplaceAll(text, payloadDelimiter, "' ' '")

	return fmt.Sprintf(`You're a football transfer analyst. Your job is to extract structured data from a tweet and assess whether a specific player transfer is likely to happen.

Tweet:
%s%s%s

Follow these rules carefully:

1. If the tweet is about a coach or manager appointment (e.g. "X joins Sevilla as new head coach"), do NOT extract any data. Return player, source_club, destination_club and status as null, certainty_score as 0.0 and looks_like_move as false.

2. Use the following examples as calibration:

%s

3. Calibrate scores carefully:
- certainty_score is the likelihood that the specific transfer will happen, based on this tweet alone.
- Only about 15-25%% of all transfer rumors lead to completed moves. Use this prior when assigning scores.
- Do not base scores solely on tweet phrasing or tone. Focus on substance.

4. Club guessing guidance:
- source_club and destination_club hold only clubs stated in the tweet.
- If a club is not named but can be reasonably inferred, you must guess it in source_club_guess or destination_club_guess using public football knowledge, even if unsure.
- If truly impossible to guess, return "Unknown" (not null), but this should be rare.

Examples of guessing behavior:

%s

Return ONLY a JSON object with these fields:
- player: full name of the player, or null
- source_club: exact club stated in the tweet that the player leaves, or null
- destination_club: exact club stated in the tweet that the player joins, or null
- status: one of %s, or null
- certainty_score: float from 0.0 to 1.0 based on calibrated judgment
- looks_like_move: true if this tweet is plausibly about a player transfer, false otherwise
- source_club_guess: best guess at origin club, or "Unknown"
- destination_club_guess: best guess at destination club, or "Unknown"

Only respond with the JSON object. No explanation or commentary.`,
		payloadDelimiter, safe, payloadDelimiter,
		calibrationExamples,
		guessingExamples,
		statusChoices(),
	)
}

const calibrationExamples = `[
  {"tweet": "Manchester City have contacted Benfica for João Neves.", "status": "Contact", "certainty_score": 0.5},
  {"tweet": "Chelsea are in advanced talks with Brighton for Caicedo.", "status": "Agreement", "certainty_score": 0.7},
  {"tweet": "Here we go! Declan Rice joins Arsenal, £105m deal agreed.", "status": "Here we go", "certainty_score": 1.0},
  {"tweet": "Tottenham appreciate Conor Gallagher but no talks yet.", "status": "Link", "certainty_score": 0.3},
  {"tweet": "Liverpool want João Palhinha, deal depends on outgoings.", "status": "Link", "certainty_score": 0.4},
  {"tweet": "PSG have submitted a bid for Kvaratskhelia.", "status": "Bid", "certainty_score": 0.6},
  {"tweet": "Barça president Laporta: 'We want Ansu Fati back but it's up to the coach.'", "status": "Link", "certainty_score": 0.3}
]`

const guessingExamples = `{
  "tweet": "Pep Guardiola on Mohamed Salah: 'He's a top player, and of course he'd improve any team.'",
  "status": "Link",
  "source_club": "Liverpool",
  "destination_club": null,
  "source_club_guess": "Liverpool",
  "destination_club_guess": "Manchester City",
  "certainty_score": 0.3
},
{
  "tweet": "Barcelona have made contact with João Cancelo, but no talks yet with Man City.",
  "status": "Contact",
  "source_club": "Manchester City",
  "destination_club": "Barcelona",
  "source_club_guess": "Manchester City",
  "destination_club_guess": "Barcelona",
  "certainty_score": 0.5
}`

// statusChoices renders the allowed stages as a JSON-style list
func statusChoices() string {
	quoted := make([]string, 0, len(model.Statuses)+1)
	for _, s := range model.Statuses {
		quoted = append(quoted, fmt.Sprintf("%q", string(s)))
	}
	quoted = append(quoted, "null")
	return "[" + strings.Join(quoted, ", ") + "]"
}
