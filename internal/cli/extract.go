package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rumorlens/internal/extract"
	"github.com/ppiankov/rumorlens/internal/model"
)

var extractLLM llmFlags

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <text>",
	Short: "Extract the structured rumor from one post",
	Long: `Extract sends a single post to the configured LLM and prints the
structured result as JSON. A failed call prints the default entity and
the failure reason on stderr, exactly as a batch run would record it.

Example:
  rumorlens extract "Here we go! Declan Rice joins Arsenal, £105m deal agreed."
  rumorlens extract "PSG have submitted a bid for Kvaratskhelia" --llm-provider anthropic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractLLM.register(extractCmd)
}

// extractOutput is the JSON printed by the extract command
type extractOutput struct {
	Tagged bool `json:"looks_like_move"`
	model.Entity
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	extractLLM.apply(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if cfg.Input.UnescapeHTML {
		text = extract.NormalizeText(text)
	}

	entity, err := extractor.TryExtract(commandContext(cmd), text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: extraction failed (%s): %v\n", extract.FailureReason(err), err)
	} else if entity.IsDefault() {
		fmt.Fprintln(os.Stderr, "Note: no transfer details found in this post")
	}

	data, err := json.MarshalIndent(extractOutput{
		Tagged: extract.NewTagger(cfg.Tagger.Keywords...).Tag(text),
		Entity: entity,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling entity: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
