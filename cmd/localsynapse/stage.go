package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/engine"
	"github.com/wdm0006/localsynapse/pkg/stage"
)

func newStageCmd(a *app) *cobra.Command {
	var chunk int
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Write orders.jsonl and year partitions from the sales CSVs without an engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if chunk <= 0 {
				chunk = a.cfg.ChunkSize
			}
			l := engine.NewLayout(a.cfg.Data())
			_, err := stage.Run(cmd.Context(), stage.Options{
				CSVGlob:    filepath.Join(a.cfg.Data(), "csv", "*.csv"),
				JSONPath:   l.JSONPath,
				ParquetDir: l.ParquetDir,
				ChunkSize:  chunk,
				Logger:     a.log,
			})
			return err
		},
	}
	cmd.Flags().IntVar(&chunk, "chunk-size", 0, "rows per chunk (default from config)")
	return cmd
}
