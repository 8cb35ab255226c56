package extract

import (
	"errors"
	"testing"

	"github.com/ppiankov/rumorlens/internal/model"
)

func TestParseReply_Direct(t *testing.T) {
	fields, err := ParseReply(`{"player": "João Neves", "status": "Contact"}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fields["player"] != "João Neves" {
		t.Errorf("Unexpected player: %v", fields["player"])
	}
}

func TestParseReply_RecoversWrappedObject(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"player\": \"Caicedo\",\n \"certainty_score\": 0.7}\n```\nHope this helps."

	fields, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("Expected recovery, got %v", err)
	}
	if fields["certainty_score"] != 0.7 {
		t.Errorf("Unexpected score: %v", fields["certainty_score"])
	}
}

func TestParseReply_Errors(t *testing.T) {
	if _, err := ParseReply("   "); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Expected ErrEmptyReply, got %v", err)
	}

	var parseErr *ParseError
	if _, err := ParseReply("I cannot help with that."); !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for prose, got %v", err)
	}
	if _, err := ParseReply("{not json at all}"); !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for broken object, got %v", err)
	}
	if _, err := ParseReply(`["a", "b"]`); !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError for array reply, got %v", err)
	}
}

func TestEntityFromFields(t *testing.T) {
	fields, err := ParseReply(`{
		"player": "João Cancelo",
		"source_club": "Manchester City",
		"destination_club": "Barcelona",
		"status": "contact",
		"certainty_score": 0.5,
		"looks_like_move": true,
		"source_club_guess": "Manchester City",
		"destination_club_guess": "Barcelona"
	}`)
	if err != nil {
		t.Fatalf("ParseReply failed: %v", err)
	}

	e := EntityFromFields(fields)

	if model.Deref(e.Player) != "João Cancelo" {
		t.Errorf("Unexpected player: %v", model.Deref(e.Player))
	}
	if model.Deref(e.SourceClub) != "Manchester City" || model.Deref(e.DestinationClub) != "Barcelona" {
		t.Errorf("Unexpected clubs: %v -> %v", model.Deref(e.SourceClub), model.Deref(e.DestinationClub))
	}
	if e.Status == nil || *e.Status != model.StatusContact {
		t.Errorf("Expected canonical Contact status, got %v", e.Status)
	}
	if e.CertaintyScore != 0.5 || !e.LooksLikeMove {
		t.Errorf("Unexpected score/flag: %v %v", e.CertaintyScore, e.LooksLikeMove)
	}
	if e.DestinationClubGuess != "Barcelona" {
		t.Errorf("Unexpected destination guess: %s", e.DestinationClubGuess)
	}
}

func TestEntityFromFields_ManagerAppointment(t *testing.T) {
	fields, err := ParseReply(`{"player": null, "source_club": null, "destination_club": null, "status": null,
		"certainty_score": 0.0, "looks_like_move": false}`)
	if err != nil {
		t.Fatalf("ParseReply failed: %v", err)
	}

	e := EntityFromFields(fields)
	if !e.IsDefault() {
		t.Errorf("Expected default-shaped entity, got %+v", e)
	}
}

func TestEntityFromFields_AliasesAndCoercion(t *testing.T) {
	fields := map[string]any{
		"Player":            "  Declan Rice ",
		"From_Club":         "West Ham",
		"to club":           "Arsenal",
		"Status":            "Here We Go",
		"CertaintyScore":    "95%",
		"looksLikeMove":     "yes",
		"toClubGuess":       "",
		"source club guess": "N/A",
	}

	e := EntityFromFields(fields)

	if model.Deref(e.Player) != "Declan Rice" {
		t.Errorf("Unexpected player: %q", model.Deref(e.Player))
	}
	if model.Deref(e.SourceClub) != "West Ham" || model.Deref(e.DestinationClub) != "Arsenal" {
		t.Errorf("Aliases not resolved: %+v", e)
	}
	if e.Status == nil || *e.Status != model.StatusHereWeGo {
		t.Errorf("Unexpected status: %v", e.Status)
	}
	if e.CertaintyScore != 0.95 {
		t.Errorf("Expected 0.95 from percentage, got %v", e.CertaintyScore)
	}
	if !e.LooksLikeMove {
		t.Error("Expected 'yes' to coerce to true")
	}
	if e.SourceClubGuess != model.UnknownClub || e.DestinationClubGuess != model.UnknownClub {
		t.Errorf("Expected blank guesses to stay Unknown, got %q %q", e.SourceClubGuess, e.DestinationClubGuess)
	}
}

func TestEntityFromFields_UnknownStatusAndClamp(t *testing.T) {
	e := EntityFromFields(map[string]any{
		"status":          "Rumour",
		"certainty_score": 3.2,
	})

	if e.Status == nil || *e.Status != "Rumour" {
		t.Errorf("Expected unknown status kept verbatim, got %v", e.Status)
	}
	if e.CertaintyScore != 1 {
		t.Errorf("Expected score clamped to 1, got %v", e.CertaintyScore)
	}

	e = EntityFromFields(map[string]any{"certainty_score": -0.4})
	if e.CertaintyScore != 0 {
		t.Errorf("Expected score clamped to 0, got %v", e.CertaintyScore)
	}
}
