package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ppiankov/rumorlens/internal/model"
)

// SQLiteBusyTimeoutMS bounds how long a writer waits on a locked database
const SQLiteBusyTimeoutMS = 5000

const schema = `
CREATE TABLE IF NOT EXISTS results (
	seq                    INTEGER PRIMARY KEY,
	id                     TEXT NOT NULL UNIQUE,
	raw_text               TEXT NOT NULL,
	looks_like_move        INTEGER NOT NULL,
	player                 TEXT,
	source_club            TEXT,
	destination_club       TEXT,
	status                 TEXT,
	certainty_score        REAL NOT NULL,
	looks_like_move_llm    INTEGER NOT NULL,
	source_club_guess      TEXT NOT NULL,
	destination_club_guess TEXT NOT NULL,
	extra                  TEXT
)`

// SQLiteStore keeps the checkpoint in a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("opening checkpoint database", zap.String("path", path))

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps the last committed snapshot readable while a new one is written
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Load returns all stored records in insertion order
func (s *SQLiteStore) Load(ctx context.Context) ([]model.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, raw_text, looks_like_move, player, source_club, destination_club, status,
		       certainty_score, looks_like_move_llm, source_club_guess, destination_club_guess, extra
		FROM results ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}
	defer rows.Close()

	var records []model.ResultRecord
	for rows.Next() {
		var (
			rec                         model.ResultRecord
			player, source, destination sql.NullString
			status, extra               sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.RawText, &rec.HeuristicFlag,
			&player, &source, &destination, &status,
			&rec.CertaintyScore, &rec.LooksLikeMove,
			&rec.SourceClubGuess, &rec.DestinationClubGuess, &extra,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
		}

		rec.Player = nullString(player)
		rec.SourceClub = nullString(source)
		rec.DestinationClub = nullString(destination)
		if status.Valid {
			rec.Status = model.StatusPtr(model.Status(status.String))
		}
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
				return nil, fmt.Errorf("%w: extra columns for %s: %v", ErrCorruptCheckpoint, rec.ID, err)
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	return records, nil
}

// Save replaces every stored row with records inside one transaction
func (s *SQLiteStore) Save(ctx context.Context, records []model.ResultRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM results"); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (seq, id, raw_text, looks_like_move, player, source_club, destination_club,
		                     status, certainty_score, looks_like_move_llm, source_club_guess,
		                     destination_club_guess, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var extra any
		if len(r.Extra) > 0 {
			data, err := json.Marshal(r.Extra)
			if err != nil {
				return fmt.Errorf("failed to encode extra columns for %s: %w", r.ID, err)
			}
			extra = string(data)
		}

		var status any
		if r.Status != nil {
			status = string(*r.Status)
		}

		if _, err := stmt.ExecContext(ctx,
			i, r.ID, r.RawText, r.HeuristicFlag,
			nullable(r.Player), nullable(r.SourceClub), nullable(r.DestinationClub),
			status, r.CertaintyScore, r.LooksLikeMove,
			r.SourceClubGuess, r.DestinationClubGuess, extra,
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint committed", zap.String("path", s.path), zap.Int("records", len(records)))
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return model.StringPtr(ns.String)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
