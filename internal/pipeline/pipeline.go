// Package pipeline drives the tag, extract and checkpoint loop over an input table.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/rumorlens/internal/checkpoint"
	"github.com/ppiankov/rumorlens/internal/extract"
	"github.com/ppiankov/rumorlens/internal/model"
	"github.com/ppiankov/rumorlens/internal/worker"
)

// DefaultCheckpointEvery is the snapshot cadence in accumulated records
const DefaultCheckpointEvery = 100

// Extractor produces an entity for one post. A non-nil error means the
// entity is the default one.
type Extractor interface {
	TryExtract(ctx context.Context, text string) (model.Entity, error)
}

// Options tunes a Driver
type Options struct {
	IDColumn        string
	TextColumn      string
	UnescapeHTML    bool   // Decode HTML entities before tagging and extraction
	CheckpointEvery int    // Snapshot whenever the accumulator size is a multiple of this
	ProgressEvery   int    // Log progress every N processed records; 0 disables
	OutputPath      string // Final table; empty skips it
}

// RunStats summarises one Run
type RunStats struct {
	RunID          string
	Total          int            // Input rows
	Resumed        int            // Records loaded from the checkpoint
	Skipped        int            // Rows whose id was already done
	Processed      int            // Rows extracted in this run
	Flagged        int            // Processed rows the tagger flagged
	Failed         int            // Processed rows that fell back to the default entity
	FailureReasons map[string]int // Failed, by extract.FailureReason
	Checkpoints    int            // Snapshots written
	Elapsed        time.Duration
	OutputPath     string
	Records        int // Rows in the final accumulator
}

// Driver processes an input table sequentially, resuming from its checkpoint store
type Driver struct {
	tagger    *extract.Tagger
	extractor Extractor
	store     checkpoint.Store
	throttle  *worker.Throttle // nil disables pacing
	logger    *zap.Logger
	opts      Options
}

// NewDriver creates a new driver
func NewDriver(tagger *extract.Tagger, extractor Extractor, store checkpoint.Store, throttle *worker.Throttle, logger *zap.Logger, opts Options) *Driver {
	if tagger == nil {
		tagger = extract.NewTagger()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = DefaultCheckpointEvery
	}
	if opts.IDColumn == "" {
		opts.IDColumn = "id"
	}
	if opts.TextColumn == "" {
		opts.TextColumn = "text"
	}
	return &Driver{
		tagger:    tagger,
		extractor: extractor,
		store:     store,
		throttle:  throttle,
		logger:    logger,
		opts:      opts,
	}
}

// Run loads the input table at inputPath and processes it
func (d *Driver) Run(ctx context.Context, inputPath string) (*RunStats, error) {
	inputs, err := ReadInput(inputPath, d.opts.IDColumn, d.opts.TextColumn)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	return d.Process(ctx, inputs)
}

// Process runs every input not yet in the checkpoint through tagging and
// extraction, snapshotting as it goes, then writes the output table.
// On cancellation the accumulator is flushed and ctx.Err() returned.
func (d *Driver) Process(ctx context.Context, inputs []model.InputRecord) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{
		RunID:          uuid.NewString(),
		Total:          len(inputs),
		FailureReasons: make(map[string]int),
		OutputPath:     d.opts.OutputPath,
	}
	logger := d.logger.With(zap.String("run_id", stats.RunID))

	texts := make([]string, len(inputs))
	flags := make([]bool, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
		if d.opts.UnescapeHTML {
			texts[i] = extract.NormalizeText(in.Text)
		}
		flags[i] = d.tagger.Tag(texts[i])
	}

	acc, err := d.store.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("load checkpoint: %w", err)
	}
	done := checkpoint.DoneIDs(acc)
	stats.Resumed = len(acc)
	savedLen := len(acc)

	logger.Info("run started",
		zap.Int("inputs", len(inputs)),
		zap.Int("resumed", len(acc)),
		zap.Int("checkpoint_every", d.opts.CheckpointEvery),
		zap.Strings("keywords", d.tagger.Keywords()),
	)

	// Snapshots run to completion even after ctx is cancelled
	save := func() error {
		if err := d.store.Save(context.WithoutCancel(ctx), acc); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		savedLen = len(acc)
		stats.Checkpoints++
		logger.Debug("checkpoint saved", zap.Int("records", len(acc)))
		return nil
	}

	// halt flushes whatever is unsaved before handing back cause
	halt := func(cause error) (*RunStats, error) {
		stats.Elapsed = time.Since(start)
		stats.Records = len(acc)
		if len(acc) != savedLen {
			if err := save(); err != nil {
				return stats, err
			}
		}
		logger.Warn("run interrupted",
			zap.Int("processed", stats.Processed),
			zap.Int("records", len(acc)),
			zap.Error(cause),
		)
		return stats, cause
	}

	for i, in := range inputs {
		if _, ok := done[in.ID]; ok {
			stats.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return halt(err)
		}

		entity, err := d.extractor.TryExtract(ctx, texts[i])
		if err != nil {
			if ctx.Err() != nil {
				// The in-flight record is dropped and retried next run
				return halt(ctx.Err())
			}
			reason := extract.FailureReason(err)
			stats.Failed++
			stats.FailureReasons[reason]++
			logger.Warn("extraction failed, using default entity",
				zap.String("id", in.ID),
				zap.String("reason", reason),
				zap.Error(err),
			)
			entity = model.DefaultEntity()
		}

		acc = append(acc, model.NewResultRecord(in, flags[i], entity))
		done[in.ID] = struct{}{}
		stats.Processed++
		if flags[i] {
			stats.Flagged++
		}

		if len(acc)%d.opts.CheckpointEvery == 0 {
			if err := save(); err != nil {
				return stats, err
			}
		}

		if d.opts.ProgressEvery > 0 && stats.Processed%d.opts.ProgressEvery == 0 {
			logger.Info("progress",
				zap.Int("processed", stats.Processed),
				zap.Int("records", len(acc)),
				zap.Int("total", len(inputs)),
				zap.Duration("elapsed", time.Since(start)),
			)
		}

		if err := d.throttle.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return halt(ctx.Err())
			}
			return halt(fmt.Errorf("throttle: %w", err))
		}
	}

	// Keeps a rerun over the same input from extracting anything again
	if len(acc) != savedLen {
		if err := save(); err != nil {
			return stats, err
		}
	}

	if d.opts.OutputPath != "" {
		if err := checkpoint.NewCSVStore(d.opts.OutputPath).Save(ctx, acc); err != nil {
			return stats, fmt.Errorf("write output: %w", err)
		}
	}

	stats.Elapsed = time.Since(start)
	stats.Records = len(acc)
	logger.Info("run complete",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("records", len(acc)),
		zap.Int("checkpoints", stats.Checkpoints),
		zap.Duration("elapsed", stats.Elapsed),
		zap.String("output", d.opts.OutputPath),
	)

	return stats, nil
}
