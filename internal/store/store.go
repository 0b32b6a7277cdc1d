// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/keymaster/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for save slots and challenge history.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			blob BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_results (
			id TEXT PRIMARY KEY,
			slot TEXT NOT NULL,
			kind TEXT NOT NULL,
			score INTEGER NOT NULL,
			reward REAL NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_challenge_results_slot_ended ON challenge_results(slot, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the blob stored under slot.
func (s *Store) Get(ctx context.Context, slot string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.GetContext(ctx, &blob, `SELECT blob FROM saves WHERE slot = ?`, slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Put replaces the blob stored under slot.
func (s *Store) Put(ctx context.Context, slot string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		slot, blob, time.Now().UnixMilli())
	return err
}

// Delete removes the blob stored under slot. Missing slots are not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	return err
}

type saveRow struct {
	Slot      string `db:"slot"`
	Size      int    `db:"size"`
	UpdatedAt int64  `db:"updated_at"`
}

// ListSaves returns every stored slot ordered by name.
func (s *Store) ListSaves(ctx context.Context) ([]model.SaveInfo, error) {
	var rows []saveRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT slot, length(blob) AS size, updated_at FROM saves ORDER BY slot ASC`); err != nil {
		return nil, err
	}
	out := make([]model.SaveInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SaveInfo{Slot: r.Slot, Size: r.Size, UpdatedAt: time.UnixMilli(r.UpdatedAt)})
	}
	return out, nil
}

type challengeRow struct {
	ID        string  `db:"id"`
	Slot      string  `db:"slot"`
	Kind      string  `db:"kind"`
	Score     int     `db:"score"`
	Reward    float64 `db:"reward"`
	StartedAt int64   `db:"started_at"`
	EndedAt   int64   `db:"ended_at"`
}

// InsertChallenge stores a finished challenge.
func (s *Store) InsertChallenge(ctx context.Context, rec model.ChallengeRecord) error {
	if rec.ID == "" {
		return errors.New("challenge record without id")
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO challenge_results (id, slot, kind, score, reward, started_at, ended_at)
		 VALUES (:id, :slot, :kind, :score, :reward, :started_at, :ended_at)`,
		challengeRow{
			ID:        rec.ID,
			Slot:      rec.Slot,
			Kind:      rec.Kind,
			Score:     rec.Score,
			Reward:    rec.Reward,
			StartedAt: rec.StartedAt.UnixMilli(),
			EndedAt:   rec.EndedAt.UnixMilli(),
		})
	if err != nil {
		return fmt.Errorf("failed to insert challenge result: %w", err)
	}
	return nil
}

// ListChallenges returns challenge history filtered by stats config, oldest first.
func (s *Store) ListChallenges(ctx context.Context, cfg model.StatsConfig) ([]model.ChallengeRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Slot != "" {
		clauses = append(clauses, "slot = ?")
		args = append(args, cfg.Slot)
	}
	if cfg.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, cfg.Kind)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UnixMilli())
	}
	query := fmt.Sprintf(`SELECT id, slot, kind, score, reward, started_at, ended_at
		FROM challenge_results
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))

	var rows []challengeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.ChallengeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ChallengeRecord{
			ID:        r.ID,
			Slot:      r.Slot,
			Kind:      r.Kind,
			Score:     r.Score,
			Reward:    r.Reward,
			StartedAt: time.UnixMilli(r.StartedAt),
			EndedAt:   time.UnixMilli(r.EndedAt),
		})
	}
	return out, nil
}

// ResetSlot deletes the save and the challenge history of slot in one transaction.
func (s *Store) ResetSlot(ctx context.Context, slot string) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM challenge_results WHERE slot = ?`, slot); err != nil {
		return err
	}
	return tx.Commit()
}
