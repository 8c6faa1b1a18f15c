// Package engine defines the SQL engines the pipelines run against and the
// bootstrap shared by all of them.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/wdm0006/localsynapse/pkg/sqlscript"
	"github.com/wdm0006/localsynapse/pkg/table"
)

// Engine executes SQL statements in one session.
type Engine interface {
	Name() string
	// Bootstrap registers the sales_csv, sales_aug, orders_parquet and
	// orders_json relations and materializes the partitioned Parquet table.
	Bootstrap(ctx context.Context, l Layout) error
	// Exec returns a nil Frame for statements without a result set.
	Exec(ctx context.Context, stmt string) (*table.Frame, error)
	Close() error
}

// Layout holds the data locations the bootstrap SQL refers to.
type Layout struct {
	CSVGlob     string
	ParquetDir  string
	ParquetGlob string
	JSONPath    string
}

// NewLayout derives the standard layout under a data directory.
func NewLayout(dataDir string) Layout {
	pq := filepath.Join(dataDir, "parquet", "orders")
	return Layout{
		CSVGlob:     filepath.Join(dataDir, "csv", "*.csv"),
		ParquetDir:  pq,
		ParquetGlob: filepath.Join(pq, "*", "*.parquet"),
		JSONPath:    filepath.Join(dataDir, "json", "orders.jsonl"),
	}
}

// Quote renders s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(filepath.ToSlash(s), "'", "''") + "'"
}

var funcs = template.FuncMap{"quote": Quote}

// Render executes a bootstrap template against l and splits the result
// into statements.
func Render(name, text string, l Layout) ([]string, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	var b bytes.Buffer
	if err := t.Execute(&b, l); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return sqlscript.Split(b.String()), nil
}

// RunBootstrap executes stmts in order and stops at the first failure.
func RunBootstrap(ctx context.Context, e sqlscript.Executor, stmts []string, log *slog.Logger) error {
	for _, s := range stmts {
		if log != nil {
			log.Info("bootstrap", "sql", firstLine(s))
		}
		if _, err := e.Exec(ctx, s); err != nil {
			return fmt.Errorf("bootstrap %q: %w", firstLine(s), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
