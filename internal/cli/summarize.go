package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rumorlens/internal/checkpoint"
	"github.com/ppiankov/rumorlens/internal/model"
	"github.com/ppiankov/rumorlens/internal/score"
)

var (
	sumBins     []string
	sumClub     string
	sumMinScore float64
	sumMaxScore float64
	sumTop      int
	sumAll      bool
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <results>",
	Short: "Summarize a structured results table",
	Long: `Summarize groups extracted rumors into status bins and lists the
most credible ones by certainty score. It reads an output CSV, a CSV
checkpoint, or a SQLite checkpoint (.db, .sqlite).

Status bins: Confirmed, Deal Agreed, Advanced Talks, Linked / Interest,
Rejected / Off, Manager Related, Other / Ambiguous.

Example:
  rumorlens summarize rumorlens_structured.csv
  rumorlens summarize rumorlens_structured.csv --club Arsenal --min-score 0.5
  rumorlens summarize checkpoint.db --bin Confirmed --bin "Deal Agreed" --top 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringArrayVar(&sumBins, "bin", nil, "only include this status bin (repeatable)")
	summarizeCmd.Flags().StringVar(&sumClub, "club", "", "only include rumors involving this club (from or to)")
	summarizeCmd.Flags().Float64Var(&sumMinScore, "min-score", 0, "minimum certainty score")
	summarizeCmd.Flags().Float64Var(&sumMaxScore, "max-score", 1, "maximum certainty score")
	summarizeCmd.Flags().IntVar(&sumTop, "top", 10, "number of rumors to list (0 lists all)")
	summarizeCmd.Flags().BoolVar(&sumAll, "all", false, "include posts the model did not judge to be player moves")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Opening a missing SQLite file would create it
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("results not found: %s", path)
		}
		return fmt.Errorf("failed to access results: %w", err)
	}

	backend := "csv"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		backend = "sqlite"
	}

	store, err := checkpoint.Open(model.CheckpointConfig{Backend: backend, Path: path, Every: 1}, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Load(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", path)
	}

	summary := score.Summarize(records, score.Filter{
		Bins:       sumBins,
		Club:       sumClub,
		MinScore:   sumMinScore,
		MaxScore:   sumMaxScore,
		RumorsOnly: !sumAll,
	}, sumTop)

	return summary.Render(cmd.OutOrStdout())
}
