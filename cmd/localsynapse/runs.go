package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/ledger"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	var runID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs from the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, err := ledger.Open(a.cfg.LedgerPath())
			if err != nil {
				return err
			}
			defer led.Close()
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetAutoWrapText(false)
			if runID != "" {
				sts, err := led.Statements(cmd.Context(), runID)
				if err != nil {
					return err
				}
				tw.SetHeader([]string{"Script", "#", "Status", "Rows", "Output", "Error"})
				for _, s := range sts {
					tw.Append([]string{s.Script, strconv.Itoa(s.Ordinal), s.Status, strconv.Itoa(s.Rows), s.Output, s.Error})
				}
				tw.Render()
				return nil
			}
			runs, err := led.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw.SetHeader([]string{"Run", "Engine", "Started", "Status", "Statements", "Failed", "Outputs"})
			for _, r := range runs {
				tw.Append([]string{r.ID, r.Engine, r.StartedAt, r.Status,
					strconv.Itoa(r.Statements), strconv.Itoa(r.Failed), strconv.Itoa(r.Outputs)})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show the statements of one run")
	return cmd
}
