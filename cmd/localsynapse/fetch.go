package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/fetch"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "fetch [products|retail|all]",
		Short:     "Download the sample datasets into the workspace",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"products", "retail", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			set := "all"
			if len(args) == 1 {
				set = args[0]
			}
			data := a.cfg.Data()
			if set == "products" || set == "all" {
				if _, err := fetch.Products(a.log).FetchAll(cmd.Context(), fetch.ProductsSources(data)); err != nil {
					return fmt.Errorf("fetch products: %w", err)
				}
			}
			if set == "retail" || set == "all" {
				if _, err := fetch.Retail(a.log).FetchAll(cmd.Context(), fetch.RetailSources(data)); err != nil {
					return fmt.Errorf("fetch retail: %w", err)
				}
			}
			a.log.Info("Done.")
			return nil
		},
	}
}
