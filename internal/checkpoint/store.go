// Package checkpoint persists result snapshots so interrupted runs can resume.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/rumorlens/internal/model"
)

// ErrCorruptCheckpoint is returned when a checkpoint exists but cannot be decoded
var ErrCorruptCheckpoint = errors.New("corrupt checkpoint")

// Store loads and saves full snapshots of processed records
type Store interface {
	// Load returns every record of the last snapshot, in order.
	// A checkpoint that does not exist yet yields an empty slice.
	Load(ctx context.Context) ([]model.ResultRecord, error)

	// Save replaces the checkpoint with records. Readers never observe a partial snapshot.
	Save(ctx context.Context, records []model.ResultRecord) error

	Close() error
}

// Open creates the store selected by cfg.Backend
func Open(cfg model.CheckpointConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("checkpoint path is required")
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "csv":
		return NewCSVStore(cfg.Path), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend: %s (supported: csv, sqlite)", cfg.Backend)
	}
}

// DoneIDs returns the set of ids present in records
func DoneIDs(records []model.ResultRecord) map[string]struct{} {
	done := make(map[string]struct{}, len(records))
	for _, r := range records {
		done[r.ID] = struct{}{}
	}
	return done
}
