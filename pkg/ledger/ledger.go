// Package ledger records pipeline runs and their statement outcomes in a
// local SQLite database.
package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/wdm0006/localsynapse/pkg/sqlscript"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	engine      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	statements  INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	outputs     INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS statements (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	script      TEXT NOT NULL,
	ordinal     INTEGER NOT NULL,
	sql_text    TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	rows        INTEGER NOT NULL DEFAULT 0,
	output      TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_statements_run ON statements(run_id);
`

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// maxSQL bounds the statement text kept per row.
const maxSQL = 500

type Run struct {
	ID         string `db:"id"`
	Engine     string `db:"engine"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	Status     string `db:"status"`
	Statements int    `db:"statements"`
	Failed     int    `db:"failed"`
	Outputs    int    `db:"outputs"`
	Error      string `db:"error"`
}

type Statement struct {
	RunID      string `db:"run_id"`
	Script     string `db:"script"`
	Ordinal    int    `db:"ordinal"`
	SQL        string `db:"sql_text"`
	Status     string `db:"status"`
	Error      string `db:"error"`
	Rows       int    `db:"rows"`
	Output     string `db:"output"`
	DurationMS int64  `db:"duration_ms"`
}

type Ledger struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open creates the database file and its tables when missing.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

func (l *Ledger) stamp() string { return l.now().UTC().Format(time.RFC3339) }

func (l *Ledger) Begin(ctx context.Context, id, engine string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, engine, started_at, status) VALUES (?, ?, ?, ?)`,
		id, engine, l.stamp(), StatusRunning)
	return err
}

func (l *Ledger) RecordStatement(ctx context.Context, runID string, o sqlscript.Outcome) error {
	st := Statement{
		RunID:      runID,
		Script:     o.Script,
		Ordinal:    o.Ordinal,
		SQL:        sqlscript.Clip(o.Statement, maxSQL),
		Status:     StatusOK,
		Rows:       o.Rows,
		Output:     o.Output,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		st.Status = StatusFailed
		st.Error = o.Err.Error()
	}
	_, err := l.db.NamedExecContext(ctx,
		`INSERT INTO statements (run_id, script, ordinal, sql_text, status, error, rows, output, duration_ms)
		 VALUES (:run_id, :script, :ordinal, :sql_text, :status, :error, :rows, :output, :duration_ms)`, st)
	return err
}

// Finish closes a run. runErr is the error that ended the run, if any;
// failed statements alone leave the run ok.
func (l *Ledger) Finish(ctx context.Context, runID string, rep sqlscript.Report, runErr error) error {
	status, msg := StatusOK, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, statements = ?, failed = ?, outputs = ?, error = ? WHERE id = ?`,
		l.stamp(), status, rep.Statements, rep.Failed, len(rep.Outputs), msg, runID)
	return err
}

// Recent returns the latest n runs, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}
	var runs []Run
	err := l.db.SelectContext(ctx, &runs, `SELECT * FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, n)
	return runs, err
}

func (l *Ledger) Statements(ctx context.Context, runID string) ([]Statement, error) {
	var out []Statement
	err := l.db.SelectContext(ctx, &out, `SELECT * FROM statements WHERE run_id = ? ORDER BY rowid`, runID)
	return out, err
}
