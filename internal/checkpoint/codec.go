package checkpoint

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/rumorlens/internal/model"
)

// Columns is the fixed leading header shared by checkpoints and the output table.
// Pass-through input columns follow in sorted order.
var Columns = []string{
	"id",
	"raw_text",
	"looks_like_move",
	"player",
	"source_club",
	"destination_club",
	"status",
	"certainty_score",
	"looks_like_move_llm",
	"source_club_guess",
	"destination_club_guess",
}

// ExtraColumns returns the sorted union of pass-through column names in records,
// leaving out any that collide with Columns.
func ExtraColumns(records []model.ResultRecord) []string {
	reserved := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		reserved[c] = true
	}

	seen := make(map[string]bool)
	var extras []string
	for _, r := range records {
		for k := range r.Extra {
			if reserved[k] || seen[k] {
				continue
			}
			seen[k] = true
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return extras
}

// WriteCSV writes records as a table following Columns
func WriteCSV(w io.Writer, records []model.ResultRecord) error {
	extras := ExtraColumns(records)

	cw := csv.NewWriter(w)
	header := append(append([]string{}, Columns...), extras...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		row = row[:0]
		row = append(row,
			r.ID,
			r.RawText,
			strconv.FormatBool(r.HeuristicFlag),
			model.Deref(r.Player),
			model.Deref(r.SourceClub),
			model.Deref(r.DestinationClub),
			statusCell(r.Status),
			strconv.FormatFloat(r.CertaintyScore, 'f', -1, 64),
			strconv.FormatBool(r.LooksLikeMove),
			r.SourceClubGuess,
			r.DestinationClubGuess,
		)
		for _, k := range extras {
			row = append(row, r.Extra[k])
		}
		// csv.Reader folds a quoted \r\n to \n; write what a reload will read
		for i := range row {
			row[i] = strings.ReplaceAll(row[i], "\r\n", "\n")
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a table written by WriteCSV. Any structural problem is
// reported as ErrCorruptCheckpoint.
func ReadCSV(r io.Reader) ([]model.ResultRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptCheckpoint, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrCorruptCheckpoint, c)
		}
	}

	var extras []string
	for _, name := range header {
		if !isReserved(name) {
			extras = append(extras, name)
		}
	}

	var records []model.ResultRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
		}

		rec, err := decodeRow(row, index, extras)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptCheckpoint, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func decodeRow(row []string, index map[string]int, extras []string) (model.ResultRecord, error) {
	cell := func(name string) string { return row[index[name]] }

	id := cell("id")
	if id == "" {
		return model.ResultRecord{}, fmt.Errorf("empty id")
	}

	flag, err := parseBool(cell("looks_like_move"))
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("looks_like_move: %w", err)
	}
	llmFlag, err := parseBool(cell("looks_like_move_llm"))
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("looks_like_move_llm: %w", err)
	}
	score, err := parseScore(cell("certainty_score"))
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("certainty_score: %w", err)
	}

	rec := model.ResultRecord{
		ID:            id,
		RawText:       cell("raw_text"),
		HeuristicFlag: flag,
		Entity: model.Entity{
			Player:               model.StringPtr(cell("player")),
			SourceClub:           model.StringPtr(cell("source_club")),
			DestinationClub:      model.StringPtr(cell("destination_club")),
			Status:               model.StatusPtr(model.Status(cell("status"))),
			CertaintyScore:       score,
			LooksLikeMove:        llmFlag,
			SourceClubGuess:      guessCell(cell("source_club_guess")),
			DestinationClubGuess: guessCell(cell("destination_club_guess")),
		},
	}

	// Empty cells are kept so the column set survives a reload
	if len(extras) > 0 {
		rec.Extra = make(map[string]string, len(extras))
		for _, name := range extras {
			rec.Extra[name] = row[index[name]]
		}
	}

	return rec, nil
}

func isReserved(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

func statusCell(s *model.Status) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func guessCell(s string) string {
	if s == "" {
		return model.UnknownClub
	}
	return s
}

// parseBool accepts strconv forms (true, True, 1); an empty cell is false
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// parseScore treats an empty cell as 0
func parseScore(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
