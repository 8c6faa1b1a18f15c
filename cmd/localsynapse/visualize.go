package main

import (
	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/chart"
)

func newVisualizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visualize",
		Short: "Chart product counts per category and gross revenue per year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := chart.Visualize(cmd.Context(), chart.Options{
				ProductsCSV: a.cfg.ProductsCSV(),
				ParquetDir:  a.cfg.ParquetDir(),
				OutDir:      a.cfg.Outputs(),
				Logger:      a.log,
				Out:         cmd.OutOrStdout(),
			})
			return err
		},
	}
}
