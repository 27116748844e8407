package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calcbridge/calcctl/env"
)

// Trace journals every reset and step to SQLite so a session can be
// replayed or audited after the fact.
type Trace struct {
	db *sql.DB
}

// StepRecord is one journaled step.
type StepRecord struct {
	EpisodeID    string `json:"episode_id"`
	Seq          int    `json:"seq"`
	Command      string `json:"command"`
	Parameters   string `json:"parameters"`
	Success      bool   `json:"success"`
	Result       string `json:"result"`
	ErrorMessage string `json:"error_message"`
}

// OpenTrace opens (or creates) the trace database at path, ensuring the
// parent directory exists.
func OpenTrace(path string) (*Trace, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating trace directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening trace db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging trace db at %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			started INTEGER NOT NULL DEFAULT (unixepoch()),
			result TEXT,
			success INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			episode_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			timestamp INTEGER NOT NULL DEFAULT (unixepoch()),
			command TEXT NOT NULL,
			parameters TEXT,
			success INTEGER NOT NULL,
			result TEXT,
			error_message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_steps_episode ON steps(episode_id, seq);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing trace schema: %w", err)
	}

	return &Trace{db: db}, nil
}

// RecordReset journals the start of an episode.
func (t *Trace) RecordReset(episodeID string, obs env.Observation) error {
	_, err := t.db.Exec(
		`INSERT OR REPLACE INTO episodes (id, result, success) VALUES (?, ?, ?)`,
		episodeID, obs.Result, obs.Success,
	)
	if err != nil {
		return fmt.Errorf("recording reset: %w", err)
	}
	return nil
}

// RecordStep journals one executed action and its observation.
func (t *Trace) RecordStep(info env.StepInfo, action env.Action, obs env.Observation) error {
	_, err := t.db.Exec(
		`INSERT INTO steps (episode_id, seq, command, parameters, success, result, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.EpisodeID, info.Step, action.Command, string(action.Parameters),
		obs.Success, obs.Result, obs.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("recording step: %w", err)
	}
	return nil
}

// Steps returns the journaled steps for an episode in execution order.
func (t *Trace) Steps(episodeID string) ([]StepRecord, error) {
	rows, err := t.db.Query(
		`SELECT episode_id, seq, command, COALESCE(parameters, ''), success, COALESCE(result, ''), COALESCE(error_message, '')
		 FROM steps WHERE episode_id = ? ORDER BY seq`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var rec StepRecord
		if err := rows.Scan(&rec.EpisodeID, &rec.Seq, &rec.Command, &rec.Parameters,
			&rec.Success, &rec.Result, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (t *Trace) Close() error {
	return t.db.Close()
}
