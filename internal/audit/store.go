package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"grimm.is/presetctl/internal/clock"
)

// Run is one recorded apply, validate or report invocation.
type Run struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Command   string         `json:"command"`
	Target    string         `json:"target"`
	Preset    string         `json:"preset"`
	Result    string         `json:"result"`
	Applied   int            `json:"applied"`
	Failed    int            `json:"failed"`
	Details   map[string]any `json:"details,omitempty"`
}

// Store provides persistent storage for run history.
type Store struct {
	mu            sync.RWMutex
	db            *sql.DB
	clock         clock.Clock
	retentionDays int
}

// NewStore opens (or creates) the history database at dbPath.
func NewStore(dbPath string, retentionDays int, clk clock.Clock) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			ts INTEGER NOT NULL,
			command TEXT NOT NULL,
			target TEXT NOT NULL,
			preset TEXT,
			result TEXT NOT NULL,
			applied INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0,
			details TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
		CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = 90
	}

	return &Store{
		db:            db,
		clock:         clock.Or(clk),
		retentionDays: retentionDays,
	}, nil
}

// Record persists a run, filling in ID and Timestamp when unset, and
// returns the stored run.
func (s *Store) Record(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = s.clock.Now()
	}

	var detailsJSON []byte
	if run.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(run.Details)
		if err != nil {
			detailsJSON = []byte("{}")
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, ts, command, target, preset, result, applied, failed, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp.UnixNano(), run.Command, run.Target, run.Preset, run.Result, run.Applied, run.Failed, string(detailsJSON))
	if err != nil {
		return run, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// History returns runs newest first, optionally restricted to one target.
func (s *Store) History(target string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, ts, command, target, preset, result, applied, failed, details FROM runs`
	var args []any
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY ts DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ts int64
		var presetName, detailsJSON sql.NullString

		err := rows.Scan(&run.ID, &ts, &run.Command, &run.Target, &presetName,
			&run.Result, &run.Applied, &run.Failed, &detailsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.Timestamp = time.Unix(0, ts).UTC()
		run.Preset = presetName.String
		if detailsJSON.Valid && detailsJSON.String != "" {
			json.Unmarshal([]byte(detailsJSON.String), &run.Details)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune removes runs older than the retention period.
func (s *Store) Prune() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().AddDate(0, 0, -s.retentionDays)
	result, err := s.db.Exec("DELETE FROM runs WHERE ts < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the total number of recorded runs.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
