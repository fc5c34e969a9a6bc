// Package audit keeps a local history of redaction runs in SQLite, so an
// operator can answer "what was redacted from this file, when, and did
// verification pass" months later without keeping the reports around.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB is the run-history store.
type DB struct {
	*sql.DB
	path string
}

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    input_file TEXT NOT NULL,
    output_file TEXT NOT NULL,
    terms_searched INTEGER NOT NULL DEFAULT 0,
    patterns_searched INTEGER NOT NULL DEFAULT 0,
    redactions_applied INTEGER NOT NULL DEFAULT 0,
    pages_modified INTEGER NOT NULL DEFAULT 0,
    sanitize_removed INTEGER NOT NULL DEFAULT 0,
    verified INTEGER NOT NULL DEFAULT 0,
    verification_passed INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_file);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one row of the run history.
type Run struct {
	ID                 string
	StartedAt          time.Time
	InputFile          string
	OutputFile         string
	TermsSearched      int
	PatternsSearched   int
	RedactionsApplied  int
	PagesModified      int
	SanitizeRemoved    int
	Verified           bool
	VerificationPassed bool
	Error              string
}

// Open opens or creates the history database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Record inserts a run. A zero ID gets a fresh UUID; a zero StartedAt gets
// the current time. The assigned ID is returned.
func (db *DB) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, started_at, input_file, output_file,
			terms_searched, patterns_searched,
			redactions_applied, pages_modified, sanitize_removed,
			verified, verification_passed, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.InputFile, run.OutputFile,
		run.TermsSearched, run.PatternsSearched,
		run.RedactionsApplied, run.PagesModified, run.SanitizeRemoved,
		run.Verified, run.VerificationPassed, run.Error)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

// History returns the most recent runs for an input file, newest first.
// An empty inputFile returns runs for every file.
func (db *DB) History(inputFile string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT run_id, started_at, input_file, output_file,
		       terms_searched, patterns_searched,
		       redactions_applied, pages_modified, sanitize_removed,
		       verified, verification_passed, COALESCE(error, '')
		FROM runs`
	args := []interface{}{}
	if inputFile != "" {
		query += " WHERE input_file = ?"
		args = append(args, inputFile)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.InputFile, &r.OutputFile,
			&r.TermsSearched, &r.PatternsSearched,
			&r.RedactionsApplied, &r.PagesModified, &r.SanitizeRemoved,
			&r.Verified, &r.VerificationPassed, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
