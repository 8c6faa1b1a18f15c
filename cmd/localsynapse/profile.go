package main

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/wdm0006/localsynapse/pkg/io/csvio"
	"github.com/wdm0006/localsynapse/pkg/io/jsonlio"
	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
	"github.com/wdm0006/localsynapse/pkg/profile"
)

type profileSource interface {
	profile.Source
	io.Closer
}

func openProfileSource(path string, chunk int) (profileSource, error) {
	p := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch {
	case strings.HasSuffix(p, ".csv"):
		return csvio.NewStreamReader(path, csvio.ReaderOptions{HasHeader: true, SampleRows: 100}, chunk)
	case strings.HasSuffix(p, ".jsonl"), strings.HasSuffix(p, ".json"):
		return jsonlio.NewStreamReader(path, chunk)
	case strings.HasSuffix(p, ".parquet"):
		return parquetio.NewStreamReader(path, chunk)
	default:
		return nil, fmt.Errorf("cannot profile %s: unknown file type", path)
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var topK int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Print per-column statistics of a CSV, JSON Lines or Parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openProfileSource(args[0], a.cfg.ChunkSize)
			if err != nil {
				return err
			}
			defer src.Close()
			c, err := profile.Collect(src, topK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(c.ReportJSON(), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			}
			_, err = fmt.Fprint(out, c.ReportText())
			return err
		},
	}
	cmd.Flags().IntVar(&topK, "top", 5, "most frequent values shown per text column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the profile as JSON")
	return cmd
}
