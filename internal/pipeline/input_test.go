package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestParseInput(t *testing.T) {
	data := "\ufeffid,text,author\n1,\"Multi\nline, quoted\",FabrizioRomano\n2,Second,\n"

	records, err := ParseInput(strings.NewReader(data), "id", "text")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Text != "Multi\nline, quoted" {
		t.Errorf("Unexpected text: %q", records[0].Text)
	}
	if records[0].Extra["author"] != "FabrizioRomano" {
		t.Errorf("Unexpected extra: %v", records[0].Extra)
	}
}

func TestParseInput_CustomColumns(t *testing.T) {
	data := "tweet_id,body\n42,Deal done\n"

	records, err := ParseInput(strings.NewReader(data), "tweet_id", "body")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if records[0].ID != "42" || records[0].Text != "Deal done" || records[0].Extra != nil {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestParseInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		missing bool
	}{
		{"no id column", "tweet,text\n1,x\n", true},
		{"no text column", "id,body\n1,x\n", true},
		{"empty file", "", true},
		{"empty id", "id,text\n1,x\n ,y\n", false},
		{"ragged row", "id,text\n1,x,extra\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(strings.NewReader(tt.data), "id", "text")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if errors.Is(err, ErrMissingColumn) != tt.missing {
				t.Errorf("errors.Is(ErrMissingColumn) = %v for %v", !tt.missing, err)
			}
		})
	}
}
