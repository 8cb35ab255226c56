package pipeline

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/rumorlens/internal/model"
)

// ErrMissingColumn is returned when the input table lacks the id or text column
var ErrMissingColumn = errors.New("missing required column")

// ReadInput loads the input table at path
func ReadInput(path, idColumn, textColumn string) ([]model.InputRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	records, err := ParseInput(bufio.NewReader(f), idColumn, textColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseInput decodes a CSV table with a header row. Columns other than
// idColumn and textColumn are kept in InputRecord.Extra.
func ParseInput(r io.Reader, idColumn, textColumn string) ([]model.InputRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, expected columns %q and %q", ErrMissingColumn, idColumn, textColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idIdx, textIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case idColumn:
			idIdx = i
		case textColumn:
			textIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, idColumn)
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, textColumn)
	}

	var records []model.InputRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		id := strings.TrimSpace(row[idIdx])
		if id == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, idColumn)
		}

		rec := model.InputRecord{ID: id, Text: row[textIdx]}
		for i, v := range row {
			if i == idIdx || i == textIdx {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string, len(row)-2)
			}
			rec.Extra[strings.TrimSpace(header[i])] = v
		}
		records = append(records, rec)
	}

	return records, nil
}
