// Package duckdb runs the pipeline on an in-memory DuckDB database.
package duckdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wdm0006/localsynapse/pkg/engine"
	"github.com/wdm0006/localsynapse/pkg/sqlscript"
	"github.com/wdm0006/localsynapse/pkg/table"
)

//go:embed bootstrap.sql
var bootstrapSQL string

type Engine struct {
	db  *sql.DB
	log *slog.Logger
}

// Open starts an in-memory database. dsn defaults to ":memory:".
func Open(dsn string, log *slog.Logger) (*Engine, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// views and tables live in one session
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{db: db, log: log}, nil
}

func (e *Engine) Name() string { return "duckdb" }

func (e *Engine) Bootstrap(ctx context.Context, l engine.Layout) error {
	if err := os.MkdirAll(l.ParquetDir, 0o755); err != nil {
		return err
	}
	stmts, err := engine.Render("duckdb/bootstrap.sql", bootstrapSQL, l)
	if err != nil {
		return err
	}
	return engine.RunBootstrap(ctx, e, stmts, e.log)
}

// Exec runs stmt as a query and returns its rows when DuckDB reports a
// result set for it; DDL and plain writes return a nil Frame.
func (e *Engine) Exec(ctx context.Context, stmt string) (*table.Frame, error) {
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	f, err := scan(rows)
	if err != nil {
		return nil, err
	}
	if !sqlscript.HasResult(stmt, f.Schema().Names()) {
		return nil, nil
	}
	return f, nil
}

func scan(rows *sql.Rows) (*table.Frame, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var records [][]any
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		records = append(records, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.FromRecords(names, records), nil
}

func (e *Engine) Close() error { return e.db.Close() }
