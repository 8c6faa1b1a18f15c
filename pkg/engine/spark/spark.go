// Package spark runs the pipeline through a Spark Connect server.
package spark

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/apache/spark-connect-go/v34/client/sql"

	"github.com/wdm0006/localsynapse/pkg/engine"
	"github.com/wdm0006/localsynapse/pkg/sqlscript"
	"github.com/wdm0006/localsynapse/pkg/table"
)

//go:embed bootstrap.sql
var bootstrapSQL string

// DefaultRemote is the Spark Connect endpoint of a local server.
const DefaultRemote = "sc://localhost:15002"

// session is the part of a Spark Connect session the engine uses.
type session interface {
	Sql(query string) (sql.DataFrame, error)
	Stop() error
}

type Engine struct {
	s   session
	log *slog.Logger
}

func Open(remote string, log *slog.Logger) (*Engine, error) {
	if remote == "" {
		remote = DefaultRemote
	}
	s, err := sql.SparkSession.Builder.Remote(remote).Build()
	if err != nil {
		return nil, fmt.Errorf("spark connect %s: %w", remote, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{s: s, log: log}, nil
}

func (e *Engine) Name() string { return "spark" }

func (e *Engine) Bootstrap(ctx context.Context, l engine.Layout) error {
	stmts, err := engine.Render("spark/bootstrap.sql", bootstrapSQL, l)
	if err != nil {
		return err
	}
	return engine.RunBootstrap(ctx, e, stmts, e.log)
}

// Exec runs stmt and, when its DataFrame has columns, collects the full
// result to the client.
func (e *Engine) Exec(ctx context.Context, stmt string) (*table.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	df, err := e.s.Sql(stmt)
	if err != nil {
		return nil, err
	}
	schema, err := df.Schema()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		names[i] = f.Name
	}
	if !sqlscript.HasResult(stmt, names) {
		return nil, nil
	}
	return collect(df, names)
}

func collect(df sql.DataFrame, names []string) (*table.Frame, error) {
	rows, err := df.Collect()
	if err != nil {
		return nil, err
	}
	records := make([][]any, 0, len(rows))
	for _, r := range rows {
		vals, err := r.Values()
		if err != nil {
			return nil, err
		}
		records = append(records, vals)
	}
	return table.FromRecords(names, records), nil
}

func (e *Engine) Close() error { return e.s.Stop() }
