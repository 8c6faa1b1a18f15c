package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/engine"
	"github.com/wdm0006/localsynapse/pkg/engine/duckdb"
	"github.com/wdm0006/localsynapse/pkg/engine/spark"
	"github.com/wdm0006/localsynapse/pkg/ledger"
	"github.com/wdm0006/localsynapse/pkg/sqlscript"
)

var engineTitles = map[string]string{"duckdb": "DuckDB", "spark": "Spark"}

// newEngineCmd builds the duckdb and spark commands; they differ only in
// the engine, the SQL directory and the result layout.
func newEngineCmd(a *app, name string) *cobra.Command {
	var sqlDir string
	var noLedger bool
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Bootstrap %s and run every script of its SQL directory", engineTitles[name]),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := pipeline{app: a, name: name, noLedger: noLedger}
			switch name {
			case "duckdb":
				p.sqlDir = a.cfg.DuckDBSQLDir()
				p.writer = sqlscript.FileResultWriter{Dir: a.cfg.Outputs(), Prefix: name}
				p.open = func(log *slog.Logger) (engine.Engine, error) { return duckdb.Open(a.cfg.DuckDB.DSN, log) }
			case "spark":
				p.sqlDir = a.cfg.SparkSQLDir()
				p.writer = sqlscript.DirResultWriter{Dir: a.cfg.Outputs(), Prefix: name}
				p.open = func(log *slog.Logger) (engine.Engine, error) { return spark.Open(a.cfg.Spark.Remote, log) }
			}
			if sqlDir != "" {
				p.sqlDir = sqlDir
			}
			p.out = cmd.OutOrStdout()
			return p.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&sqlDir, "sql-dir", "", "directory of .sql scripts (default from config)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "do not record the run in the run ledger")
	return cmd
}

type pipeline struct {
	*app
	name     string
	sqlDir   string
	writer   sqlscript.ResultWriter
	open     func(*slog.Logger) (engine.Engine, error)
	noLedger bool
	out      io.Writer
}

func (p pipeline) run(ctx context.Context) (err error) {
	runID := uuid.NewString()
	log := p.log.With("run", runID, "engine", p.name)
	if err := os.MkdirAll(p.cfg.Outputs(), 0o755); err != nil {
		return err
	}

	led := p.openLedger(ctx, log, runID)
	var rep sqlscript.Report
	if led != nil {
		defer func() {
			// a cancelled ctx must not stop the run from being closed
			if ferr := led.Finish(context.WithoutCancel(ctx), runID, rep, err); ferr != nil {
				log.Warn("ledger finish", "err", ferr)
			}
			_ = led.Close()
		}()
	}

	eng, err := p.open(log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			log.Warn("close engine", "err", cerr)
		}
	}()

	log.Info("==> Bootstrapping views and partitioned Parquet")
	if err := eng.Bootstrap(ctx, engine.NewLayout(p.cfg.Data())); err != nil {
		return err
	}

	r := &sqlscript.Runner{
		Exec:    eng,
		Writer:  p.writer,
		Logger:  log,
		Out:     p.out,
		Preview: p.cfg.PreviewRows,
	}
	if led != nil {
		r.Observe = func(o sqlscript.Outcome) {
			if err := led.RecordStatement(ctx, runID, o); err != nil {
				log.Warn("ledger record", "err", err)
			}
		}
	}
	rep, err = r.RunDir(ctx, p.sqlDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s run interrupted: %w", p.name, err)
		}
		return err
	}
	log.Info(fmt.Sprintf("%s run complete. Results saved in %s.", engineTitles[p.name], p.cfg.Outputs()),
		"statements", rep.Statements, "failed", rep.Failed, "outputs", len(rep.Outputs))
	return nil
}

// openLedger returns nil when the ledger is disabled or unavailable.
func (p pipeline) openLedger(ctx context.Context, log *slog.Logger, runID string) *ledger.Ledger {
	if p.noLedger {
		return nil
	}
	led, err := ledger.Open(p.cfg.LedgerPath())
	if err != nil {
		log.Warn("run ledger unavailable", "err", err)
		return nil
	}
	if err := led.Begin(ctx, runID, p.name); err != nil {
		log.Warn("run ledger unavailable", "err", err)
		_ = led.Close()
		return nil
	}
	return led
}
