// Package stage prepares the JSON Lines and partitioned Parquet copies of
// the sales CSVs without a SQL engine.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wdm0006/localsynapse/pkg/io/csvio"
	"github.com/wdm0006/localsynapse/pkg/io/jsonlio"
	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
	"github.com/wdm0006/localsynapse/pkg/table"
	"github.com/wdm0006/localsynapse/pkg/transform/derive"
	"github.com/wdm0006/localsynapse/pkg/transform/standardize"
)

type Options struct {
	// CSVGlob selects the input files; they are read in name order.
	CSVGlob    string
	JSONPath   string
	ParquetDir string
	ChunkSize  int
	Logger     *slog.Logger
}

type Result struct {
	Files      []string
	Rows       int
	Partitions []string
}

// Pipeline is the transform applied to every chunk: trim text cells and
// derive year from OrderDate.
func Pipeline() *table.Pipeline {
	return table.NewPipeline().
		Add(&standardize.Trim{}).
		Add(&derive.Year{From: "OrderDate", To: "year"})
}

func Run(ctx context.Context, o Options) (Result, error) {
	var res Result
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	files, err := filepath.Glob(o.CSVGlob)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no input files match %s", o.CSVGlob)
	}
	sort.Strings(files)
	res.Files = files

	var src table.ChainSource
	defer func() {
		// readers left undrained after an error
		for _, s := range src {
			_ = s.(*csvio.StreamReader).Close()
		}
	}()
	for _, p := range files {
		sr, err := csvio.NewStreamReader(p, csvio.ReaderOptions{HasHeader: true, SampleRows: 100}, o.ChunkSize)
		if err != nil {
			return res, fmt.Errorf("%s: %w", p, err)
		}
		if w := sr.Warnings(); w != "" {
			log.Warn("csv", "file", p, "warnings", w)
		}
		src = append(src, sr)
	}

	for _, d := range []string{filepath.Dir(o.JSONPath), o.ParquetDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return res, err
		}
	}
	jw, err := jsonlio.NewStreamWriter(o.JSONPath)
	if err != nil {
		return res, err
	}
	pw := parquetio.NewPartitionWriter(o.ParquetDir, "year")
	sink := table.MultiSink{jw, pw}

	n, err := table.RunStream(ctx, Pipeline(), &src, sink)
	res.Rows = n
	res.Partitions = pw.Partitions()
	if err != nil {
		return res, err
	}
	log.Info("staged", "rows", n, "json", o.JSONPath, "parquet", o.ParquetDir, "partitions", len(res.Partitions))
	return res, nil
}
