package score

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth truncates long cells such as club names with notes attached
const maxCellWidth = 40

// RenderTable writes a markdown table padded to display width, so accented
// and wide characters line up in a terminal
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(headers); i++ {
			if width := runewidth.StringWidth(cell(row[i])); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	writeRow := func(cells []string, separator bool) error {
		var sb strings.Builder
		sb.WriteString("|")
		for j := range headers {
			sb.WriteString(" ")
			if separator {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(cells) {
					content = cell(cells[j])
				}
				sb.WriteString(runewidth.FillRight(content, colWidths[j]))
			}
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	if err := writeRow(headers, false); err != nil {
		return err
	}
	if err := writeRow(nil, true); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row, false); err != nil {
			return err
		}
	}
	return nil
}

// cell flattens newlines and pipes and truncates to maxCellWidth
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "|", "/")
	return runewidth.Truncate(s, maxCellWidth, "…")
}

// Render writes the bin counts and ranked rumors
func (s Summary) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d of %d records match\n\n", s.Matching, s.Total); err != nil {
		return err
	}

	binRows := make([][]string, len(s.ByBin))
	for i, bc := range s.ByBin {
		binRows[i] = []string{bc.Bin, strconv.Itoa(bc.Count)}
	}
	if err := RenderTable(w, []string{"Status bin", "Count"}, binRows); err != nil {
		return err
	}

	if len(s.Top) == 0 {
		_, err := fmt.Fprintln(w, "\nNo rumors match your filters.")
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	rows := make([][]string, len(s.Top))
	for i, r := range s.Top {
		rows[i] = []string{
			r.ID,
			r.Label(),
			r.fromClub(),
			statusString(r.Status),
			r.Bin,
			strconv.FormatFloat(r.CertaintyScore, 'f', 2, 64),
		}
	}
	return RenderTable(w, []string{"ID", "Rumor", "From", "Status", "Bin", "Certainty"}, rows)
}
