// Package history records conversion runs in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mavwarf/mkicns/internal/paths"

	_ "modernc.org/sqlite"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeDryRun    Outcome = "dry-run"
)

// Record is one run.
type Record struct {
	ID        int64
	Time      time.Time
	Document  string
	Width     float64
	Height    float64
	Outcome   Outcome
	Message   string
	IcnsPath  string
	Warnings  []string
	ExitCodes []int // iconutil, rm; empty when not run
	// Duration is the time spent in external commands.
	Duration time.Duration
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=2000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp   TEXT    NOT NULL,
    document    TEXT    NOT NULL DEFAULT '',
    width       REAL    NOT NULL DEFAULT 0,
    height      REAL    NOT NULL DEFAULT 0,
    outcome     TEXT    NOT NULL,
    message     TEXT    NOT NULL DEFAULT '',
    icns_path   TEXT    NOT NULL DEFAULT '',
    warnings    TEXT    NOT NULL DEFAULT '',
    exit_codes  TEXT    NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_runs_document  ON runs(document);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Log inserts r. A zero Time is replaced with the current time. Timestamps
// are stored in UTC so that string comparison orders them.
func (s *Store) Log(r Record) error {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	codes := make([]string, len(r.ExitCodes))
	for i, c := range r.ExitCodes {
		codes[i] = fmt.Sprint(c)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (timestamp, document, width, height, outcome, message, icns_path, warnings, exit_codes, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Time.UTC().Format(time.RFC3339), r.Document, r.Width, r.Height, string(r.Outcome),
		r.Message, r.IcnsPath, strings.Join(r.Warnings, ","), strings.Join(codes, ","),
		r.Duration.Milliseconds(),
	)
	return err
}

// Recent returns up to n runs, newest first. n <= 0 returns all runs.
func (s *Store) Recent(n int) ([]Record, error) {
	q := `SELECT id, timestamp, document, width, height, outcome, message, icns_path, warnings, exit_codes, duration_ms
	      FROM runs ORDER BY timestamp DESC, id DESC`
	var args []any
	if n > 0 {
		q += " LIMIT ?"
		args = append(args, n)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ts, outcome, warnings, codes string
		var ms int64
		if err := rows.Scan(&r.ID, &ts, &r.Document, &r.Width, &r.Height, &outcome,
			&r.Message, &r.IcnsPath, &warnings, &codes, &ms); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		r.Time, _ = time.Parse(time.RFC3339, ts)
		r.Outcome = Outcome(outcome)
		r.Warnings = splitCSV(warnings)
		for _, c := range splitCSV(codes) {
			var code int
			fmt.Sscan(c, &code)
			r.ExitCodes = append(r.ExitCodes, code)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clean removes runs older than days and returns how many were removed.
func (s *Store) Clean(days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Clear deletes every run.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// LogBestEffort opens the default history database, records r and closes
// it. Errors are printed to stderr but never returned.
func LogBestEffort(r Record) {
	s, err := Open(paths.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	defer s.Close()
	if err := s.Log(r); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}
