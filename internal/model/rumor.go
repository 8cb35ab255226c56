package model

import "strings"

// InputRecord is one row of the input table
type InputRecord struct {
	ID    string            // Unique, stable across runs
	Text  string            // Raw post body
	Extra map[string]string // Additional input columns, passed through untouched
}

// Status is the deal stage reported by a post
type Status string

const (
	StatusLink      Status = "Link"
	StatusContact   Status = "Contact"
	StatusBid       Status = "Bid"
	StatusAgreement Status = "Agreement"
	StatusHereWeGo  Status = "Here we go"
	StatusDealOff   Status = "Deal off"
)

// Statuses lists the recognised deal stages in escalation order
var Statuses = []Status{
	StatusLink,
	StatusContact,
	StatusBid,
	StatusAgreement,
	StatusHereWeGo,
	StatusDealOff,
}

// ParseStatus matches s against the known stages, ignoring case and surrounding space.
// ok is false when s is not one of them.
func ParseStatus(s string) (Status, bool) {
	trimmed := strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(trimmed, string(st)) {
			return st, true
		}
	}
	return Status(trimmed), false
}

// UnknownClub is the guess value used when no club can be inferred
const UnknownClub = "Unknown"

// Entity is the structured extraction of a single post.
// Nil pointers mean the field is absent.
type Entity struct {
	Player               *string `json:"player"`
	SourceClub           *string `json:"source_club"`
	DestinationClub      *string `json:"destination_club"`
	Status               *Status `json:"status"`
	CertaintyScore       float64 `json:"certainty_score"`        // Calibrated probability the move completes
	LooksLikeMove        bool    `json:"looks_like_move_llm"`    // Model's view that this is a player transfer
	SourceClubGuess      string  `json:"source_club_guess"`      // Inferred origin club or "Unknown"
	DestinationClubGuess string  `json:"destination_club_guess"` // Inferred destination club or "Unknown"
}

// DefaultEntity returns the entity used whenever extraction fails
func DefaultEntity() Entity {
	return Entity{
		CertaintyScore:       0.0,
		LooksLikeMove:        false,
		SourceClubGuess:      UnknownClub,
		DestinationClubGuess: UnknownClub,
	}
}

// IsDefault reports whether e carries no extracted information
func (e Entity) IsDefault() bool {
	return e.Player == nil &&
		e.SourceClub == nil &&
		e.DestinationClub == nil &&
		e.Status == nil &&
		e.CertaintyScore == 0 &&
		!e.LooksLikeMove &&
		e.SourceClubGuess == UnknownClub &&
		e.DestinationClubGuess == UnknownClub
}

// ResultRecord is the persisted outcome for one input record
type ResultRecord struct {
	ID            string
	RawText       string
	HeuristicFlag bool
	Entity
	Extra map[string]string
}

// NewResultRecord assembles a result from an input row, its heuristic flag and the extraction
func NewResultRecord(in InputRecord, flag bool, entity Entity) ResultRecord {
	var extra map[string]string
	if len(in.Extra) > 0 {
		extra = make(map[string]string, len(in.Extra))
		for k, v := range in.Extra {
			extra[k] = v
		}
	}
	return ResultRecord{
		ID:            in.ID,
		RawText:       in.Text,
		HeuristicFlag: flag,
		Entity:        entity,
		Extra:         extra,
	}
}

// StringPtr returns a pointer to s, or nil when s is blank
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// StatusPtr returns a pointer to s, or nil when s is blank
func StatusPtr(s Status) *Status {
	if strings.TrimSpace(string(s)) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
