package score

import (
	"sort"
	"strings"

	"github.com/ppiankov/rumorlens/internal/model"
)

// Filter selects records for a Summary
type Filter struct {
	Bins       []string // Empty keeps every bin
	Club       string   // Matches source or destination, stated or guessed; empty keeps all
	MinScore   float64
	MaxScore   float64
	RumorsOnly bool // Keep only records the model judged to be a player move
}

// DefaultFilter keeps every rumor
func DefaultFilter() Filter {
	return Filter{MinScore: 0, MaxScore: 1, RumorsOnly: true}
}

// Row is one ranked record
type Row struct {
	model.ResultRecord
	Bin string
}

// Label renders "player → destination" with placeholders for absent names
func (r Row) Label() string {
	player := model.Deref(r.Player)
	if player == "" {
		player = model.UnknownClub
	}
	dest := model.Deref(r.DestinationClub)
	if dest == "" {
		dest = "???"
	}
	return player + " → " + dest
}

// BinCount is the number of matching records in one bin
type BinCount struct {
	Bin   string
	Count int
}

// Summary describes a filtered view of a result table
type Summary struct {
	Total    int        // Records examined
	Matching int        // Records passing the filter
	ByBin    []BinCount // Matching records per bin, in rule order
	Top      []Row      // Highest certainty first
}

// Summarize filters records and ranks them by certainty. topN <= 0 keeps every match.
func (b *Binner) Summarize(records []model.ResultRecord, f Filter, topN int) Summary {
	wanted := make(map[string]bool, len(f.Bins))
	for _, bin := range f.Bins {
		wanted[strings.ToLower(bin)] = true
	}

	counts := make(map[string]int)
	var rows []Row
	for _, r := range records {
		bin := b.Bin(statusString(r.Status))
		if len(wanted) > 0 && !wanted[strings.ToLower(bin)] {
			continue
		}
		if r.CertaintyScore < f.MinScore || r.CertaintyScore > f.MaxScore {
			continue
		}
		if f.Club != "" && !involvesClub(r.Entity, f.Club) {
			continue
		}
		if f.RumorsOnly && !r.LooksLikeMove {
			continue
		}
		counts[bin]++
		rows = append(rows, Row{ResultRecord: r, Bin: bin})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CertaintyScore > rows[j].CertaintyScore
	})
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}

	var byBin []BinCount
	for _, bin := range b.Bins() {
		if n := counts[bin]; n > 0 {
			byBin = append(byBin, BinCount{Bin: bin, Count: n})
		}
	}

	matching := 0
	for _, n := range counts {
		matching += n
	}

	return Summary{
		Total:    len(records),
		Matching: matching,
		ByBin:    byBin,
		Top:      rows,
	}
}

func statusString(s *model.Status) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

func involvesClub(e model.Entity, club string) bool {
	for _, c := range []string{
		model.Deref(e.SourceClub),
		model.Deref(e.DestinationClub),
		e.SourceClubGuess,
		e.DestinationClubGuess,
	} {
		if c != "" && strings.EqualFold(c, club) {
			return true
		}
	}
	return false
}

// fromClub prefers the stated source club over the guess
func (r Row) fromClub() string {
	if s := model.Deref(r.SourceClub); s != "" {
		return s
	}
	return r.SourceClubGuess
}

// Summarize is Binner.Summarize with DefaultBinRules
func Summarize(records []model.ResultRecord, f Filter, topN int) Summary {
	return NewBinner().Summarize(records, f, topN)
}
