// Command localsynapse runs the retail demo pipelines: dataset downloads,
// staging, DuckDB and Spark SQL runs, and charts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/config"
)

var version = "0.1.0-dev"

// app carries the state shared by all subcommands.
type app struct {
	cfgPath   string
	envFile   string
	workspace string
	verbose   bool

	cfg config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "localsynapse",
		Short:         "Local retail analytics pipelines on DuckDB and Spark",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (.yaml, .toml or .json)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	pf.StringVar(&a.workspace, "workspace", "", "workspace root (overrides config and "+config.EnvWorkspace+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newFetchCmd(a),
		newStageCmd(a),
		newEngineCmd(a, "duckdb"),
		newEngineCmd(a, "spark"),
		newVisualizeCmd(a),
		newProfileCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath, a.envFile)
	if err != nil {
		return err
	}
	if a.workspace != "" {
		cfg.Workspace = a.workspace
	}
	a.cfg = cfg
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)
	return nil
}
