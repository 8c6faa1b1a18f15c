package sqlscript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// Executor runs one statement. A nil Frame means the statement produced
// no result set.
type Executor interface {
	Exec(ctx context.Context, stmt string) (*table.Frame, error)
}

// Outcome is the result of a single statement.
type Outcome struct {
	Script    string
	Ordinal   int
	Statement string
	Rows      int
	Output    string
	Err       error
	Duration  time.Duration
}

func (o Outcome) Failed() bool { return o.Err != nil }

type Report struct {
	Files      []string
	Statements int
	Failed     int
	Outputs    []string
	Outcomes   []Outcome
}

// Runner executes every *.sql file of a directory in filename order.
// Failed statements are logged and skipped; nothing is rolled back.
type Runner struct {
	Exec    Executor
	Writer  ResultWriter
	Logger  *slog.Logger
	Out     io.Writer
	Preview int
	// Observe, when set, is called after every statement.
	Observe func(Outcome)
}

// RunDir runs the scripts in dir. Only a missing or unreadable directory
// (or a cancelled context) is returned as an error.
func (r *Runner) RunDir(ctx context.Context, dir string) (Report, error) {
	var rep Report
	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, fmt.Errorf("sql dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	outputs := map[string]bool{}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Files = append(rep.Files, name)
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return rep, err
		}
		r.logger().Info("==> Running "+name, "file", name)
		script := strings.TrimSuffix(name, ".sql")
		for i, stmt := range Split(string(b)) {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			o := r.runStatement(ctx, script, i+1, stmt)
			rep.Statements++
			if o.Failed() {
				rep.Failed++
			}
			if o.Output != "" && !outputs[o.Output] {
				outputs[o.Output] = true
				rep.Outputs = append(rep.Outputs, o.Output)
			}
			rep.Outcomes = append(rep.Outcomes, o)
			if r.Observe != nil {
				r.Observe(o)
			}
		}
	}
	return rep, nil
}

func (r *Runner) runStatement(ctx context.Context, script string, ord int, stmt string) Outcome {
	o := Outcome{Script: script, Ordinal: ord, Statement: stmt}
	start := time.Now()
	log := r.logger()
	log.Debug("statement", "script", script, "n", ord, "sql", abbreviate(stmt, 80))

	f, err := r.Exec.Exec(ctx, stmt)
	if err != nil {
		o.Err = err
		log.Warn(fmt.Sprintf("[WARN] Statement failed: %v", err), "script", script, "statement", stmt)
		o.Duration = time.Since(start)
		return o
	}
	if f == nil {
		o.Duration = time.Since(start)
		return o
	}
	o.Rows = f.Rows()
	if r.Out != nil {
		Preview(r.Out, f, r.previewRows())
	}
	if r.Writer != nil {
		path, err := r.Writer.WriteResult(script, f)
		if err != nil {
			o.Err = fmt.Errorf("write result: %w", err)
			log.Warn(fmt.Sprintf("[WARN] Statement failed: %v", o.Err), "script", script, "statement", stmt)
		} else {
			o.Output = path
			log.Info("result saved", "path", path, "rows", o.Rows)
		}
	}
	o.Duration = time.Since(start)
	return o
}

func (r *Runner) previewRows() int {
	if r.Preview <= 0 {
		return 20
	}
	return r.Preview
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return Clip(s, n) + "..."
}

// Clip returns at most n bytes of s without splitting a UTF-8 sequence.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
