package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/rumorlens/internal/checkpoint"
	"github.com/ppiankov/rumorlens/internal/extract"
	"github.com/ppiankov/rumorlens/internal/model"
	"github.com/ppiankov/rumorlens/internal/pipeline"
	"github.com/ppiankov/rumorlens/internal/worker"
)

var (
	runOutput            string
	runCheckpoint        string
	runCheckpointBackend string
	runCheckpointEvery   int
	runDelay             time.Duration
	runMaxRetries        int
	runLLM               llmFlags
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <input.csv>",
	Short: "Tag and extract every post in an input table",
	Long: `Run processes an input CSV with an id and a text column:
- Flag each post with the transfer keyword heuristic
- Extract player, clubs, deal stage and certainty with an LLM
- Checkpoint progress every N records and resume from it on rerun
- Write the structured table to the output path

Posts already in the checkpoint are skipped, so rerunning after an
interruption only processes what is left. Ctrl-C saves progress first.

Example:
  rumorlens run tweets.csv
  rumorlens run tweets.csv --output structured.csv --checkpoint-every 50
  rumorlens run tweets.csv --llm-provider ollama --llm-model llama3.1 --delay 0`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Output flags
	runCmd.Flags().StringVar(&runOutput, "output", "", "output CSV path (default from config: rumorlens_structured.csv)")
	runCmd.Flags().StringVar(&runCheckpoint, "checkpoint", "", "checkpoint path (default from config: rumorlens_checkpoint.csv)")
	runCmd.Flags().StringVar(&runCheckpointBackend, "checkpoint-backend", "", "checkpoint backend: csv or sqlite")
	runCmd.Flags().IntVar(&runCheckpointEvery, "checkpoint-every", 0, "save a checkpoint every N records (default 100)")

	// Pacing flags
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "pause after each LLM call (default 1s)")
	runCmd.Flags().IntVar(&runMaxRetries, "max-retries", 0, "retry failed LLM calls up to N times")

	// LLM flags
	runLLM.register(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	store, err := checkpoint.Open(cfg.Checkpoint, logger.Named("checkpoint"))
	if err != nil {
		return fmt.Errorf("open checkpoint: %w", err)
	}
	defer store.Close()

	throttle := worker.NewThrottle(cfg.LLM.Provider, cfg.Throttle.Delay, cfg.Throttle.RequestsPerSecond, cfg.Throttle.Burst)

	driver := pipeline.NewDriver(
		extract.NewTagger(cfg.Tagger.Keywords...),
		extractor,
		store,
		throttle,
		logger.Named("pipeline"),
		pipeline.Options{
			IDColumn:        cfg.Input.IDColumn,
			TextColumn:      cfg.Input.TextColumn,
			UnescapeHTML:    cfg.Input.UnescapeHTML,
			CheckpointEvery: cfg.Checkpoint.Every,
			ProgressEvery:   cfg.Output.ProgressEvery,
			OutputPath:      cfg.Output.Path,
		},
	)

	// SIGINT/SIGTERM stop the loop after the in-flight record; progress is flushed
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		fmt.Fprintf(os.Stderr, "Input: %s\n", inputPath)
		fmt.Fprintf(os.Stderr, "Checkpoint: %s (%s, every %d)\n", cfg.Checkpoint.Path, cfg.Checkpoint.Backend, cfg.Checkpoint.Every)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Delay: %s\n", throttle.Delay())
		fmt.Fprintln(os.Stderr)
	}

	stats, err := driver.Run(ctx, inputPath)
	if errors.Is(err, context.Canceled) {
		logger.Warn("interrupted; rerun the same command to resume",
			zap.String("checkpoint", cfg.Checkpoint.Path))
		printStats(cmd, stats, false)
		return fmt.Errorf("run interrupted after %d records", stats.Processed)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printStats(cmd, stats, true)
	return nil
}

// applyRunFlags overrides config values with the flags the user set
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Path = runOutput
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint.Path = runCheckpoint
	}
	if flags.Changed("checkpoint-backend") {
		cfg.Checkpoint.Backend = runCheckpointBackend
	}
	if flags.Changed("checkpoint-every") {
		cfg.Checkpoint.Every = runCheckpointEvery
	}
	if flags.Changed("delay") {
		cfg.Throttle.Delay = runDelay
	}
	if flags.Changed("max-retries") {
		cfg.LLM.MaxRetries = runMaxRetries
	}
	runLLM.apply(cmd, cfg)
}

func printStats(cmd *cobra.Command, stats *pipeline.RunStats, complete bool) {
	if stats == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Processed %d of %d records (%d already done)\n", stats.Processed, stats.Total, stats.Skipped)
	fmt.Fprintf(out, "✓ Heuristic flagged %d, extraction failed %d\n", stats.Flagged, stats.Failed)
	reasons := make([]string, 0, len(stats.FailureReasons))
	for reason := range stats.FailureReasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(out, "    %s: %d\n", reason, stats.FailureReasons[reason])
	}
	fmt.Fprintf(out, "✓ %d checkpoints written in %s\n", stats.Checkpoints, formatDuration(stats.Elapsed))
	if complete && stats.OutputPath != "" {
		fmt.Fprintf(out, "✓ Wrote %d records: %s\n", stats.Records, stats.OutputPath)
	}
}
