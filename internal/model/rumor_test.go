package model

import "testing"

func TestDefaultEntity(t *testing.T) {
	e := DefaultEntity()

	if e.Player != nil || e.SourceClub != nil || e.DestinationClub != nil || e.Status != nil {
		t.Errorf("expected identity fields to be absent, got %+v", e)
	}
	if e.CertaintyScore != 0.0 {
		t.Errorf("expected certainty 0.0, got %f", e.CertaintyScore)
	}
	if e.LooksLikeMove {
		t.Error("expected LooksLikeMove false")
	}
	if e.SourceClubGuess != "Unknown" || e.DestinationClubGuess != "Unknown" {
		t.Errorf("expected Unknown guesses, got %q / %q", e.SourceClubGuess, e.DestinationClubGuess)
	}
	if !e.IsDefault() {
		t.Error("expected IsDefault to be true")
	}

	e.Player = StringPtr("Declan Rice")
	if e.IsDefault() {
		t.Error("expected IsDefault to be false once a player is set")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   Status
		wantOK bool
	}{
		{"Link", StatusLink, true},
		{"here we go", StatusHereWeGo, true},
		{"  Deal off ", StatusDealOff, true},
		{"AGREEMENT", StatusAgreement, true},
		{"Advanced talks", Status("Advanced talks"), false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewResultRecord_CopiesExtra(t *testing.T) {
	in := InputRecord{
		ID:    "42",
		Text:  "Here we go!",
		Extra: map[string]string{"market_value": "105"},
	}

	rec := NewResultRecord(in, true, DefaultEntity())
	in.Extra["market_value"] = "0"

	if rec.Extra["market_value"] != "105" {
		t.Errorf("expected pass-through column to be copied, got %q", rec.Extra["market_value"])
	}
	if rec.ID != "42" || rec.RawText != "Here we go!" || !rec.HeuristicFlag {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("  ") != nil {
		t.Error("expected nil for blank string")
	}
	if p := StringPtr("Arsenal"); p == nil || *p != "Arsenal" {
		t.Errorf("unexpected pointer: %v", p)
	}
	if Deref(nil) != "" {
		t.Error("expected empty string for nil")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Checkpoint.Every = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero checkpoint cadence")
	}

	cfg = DefaultConfig()
	cfg.Checkpoint.Backend = "parquet"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}
