package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	StatusRunning = "running"
	StatusReady   = "ready"
	StatusFailed  = "failed"

	// timestampLayout is fixed width so stored values sort chronologically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Run is one fill invocation as recorded in the history.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Mode        string
	Driver      string
	StartDate   string
	EntryCount  int
	TotalUnits  string
	SourceFiles []string
	RowsAdded   int
	FinalState  string
	Status      string
	Error       string
}

// Outcome is what a run reports once it stops.
type Outcome struct {
	RowsAdded  int
	FinalState string
	Err        error
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var ErrRunNotFound = errors.New("run not found")

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	mode TEXT NOT NULL,
	driver TEXT NOT NULL,
	start_date TEXT NOT NULL,
	entry_count INTEGER NOT NULL CHECK(entry_count >= 0),
	total_units TEXT NOT NULL DEFAULT '0',
	source_files TEXT NOT NULL,
	rows_added INTEGER NOT NULL DEFAULT 0,
	final_state TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// StartRun records a run in the running state and returns its id.
func (s *SQLiteStore) StartRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	if run.TotalUnits == "" {
		run.TotalUnits = "0"
	}

	const insertStmt = `
INSERT INTO runs (
	id,
	started_at,
	mode,
	driver,
	start_date,
	entry_count,
	total_units,
	source_files,
	status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	if _, err := s.db.Exec(
		insertStmt,
		run.ID,
		run.StartedAt.UTC().Format(timestampLayout),
		run.Mode,
		run.Driver,
		run.StartDate,
		run.EntryCount,
		run.TotalUnits,
		strings.Join(run.SourceFiles, "\n"),
		StatusRunning,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stores the outcome. A nil outcome error marks the run ready.
func (s *SQLiteStore) FinishRun(id string, outcome Outcome) error {
	status := StatusReady
	message := ""
	if outcome.Err != nil {
		status = StatusFailed
		message = outcome.Err.Error()
	}

	res, err := s.db.Exec(`
UPDATE runs
SET finished_at = ?, rows_added = ?, final_state = ?, status = ?, error = ?
WHERE id = ?;`,
		s.now().UTC().Format(timestampLayout),
		outcome.RowsAdded,
		outcome.FinalState,
		status,
		message,
		id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

const selectRuns = `
SELECT id, started_at, finished_at, mode, driver, start_date, entry_count,
	total_units, source_files, rows_added, final_state, status, error
FROM runs`

func (s *SQLiteStore) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(selectRuns+` WHERE id = ?;`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]Run, error) {
	query := selectRuns + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, 16)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		startedAt   string
		finishedAt  sql.NullString
		sourceFiles string
	)
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Mode,
		&run.Driver,
		&run.StartDate,
		&run.EntryCount,
		&run.TotalUnits,
		&sourceFiles,
		&run.RowsAdded,
		&run.FinalState,
		&run.Status,
		&run.Error,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	parsed, err := time.Parse(timestampLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = parsed
	if finishedAt.Valid {
		finished, err := time.Parse(timestampLayout, finishedAt.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at for run %s: %w", run.ID, err)
		}
		run.FinishedAt = &finished
	}
	if sourceFiles != "" {
		run.SourceFiles = strings.Split(sourceFiles, "\n")
	}
	return run, nil
}
