// Command benchstage measures staging throughput on generated sales orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
	"github.com/wdm0006/localsynapse/pkg/stage"
	"github.com/wdm0006/localsynapse/pkg/table"
)

var items = []string{"Mountain-100 Silver, 38", "  Road-150 Red, 48 ", "Sport-100 Helmet, Black", "Water Bottle - 30 oz."}

// genSource yields synthetic sales-order chunks spread over several years.
type genSource struct {
	schema table.Schema
	remain int
	chunk  int
	years  int
	missp  float64
	rnd    *rand.Rand
	seq    int
}

func (g *genSource) Next() (*table.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := g.chunk
	if n > g.remain {
		n = g.remain
	}
	g.remain -= n
	f := table.NewFrame(g.schema)
	for i := 0; i < n; i++ {
		g.seq++
		f.AppendNullRow()
		_ = f.SetCell(i, "SalesOrderNumber", fmt.Sprintf("SO%d", 43700+g.seq))
		if g.rnd.Float64() >= g.missp {
			d := time.Date(2019+g.rnd.Intn(g.years), time.Month(1+g.rnd.Intn(12)), 1+g.rnd.Intn(28), 0, 0, 0, 0, time.UTC)
			_ = f.SetCell(i, "OrderDate", d.Format("2006-01-02"))
		}
		_ = f.SetCell(i, "Item", items[g.rnd.Intn(len(items))])
		_ = f.SetCell(i, "Quantity", int64(1+g.rnd.Intn(3)))
		price := float64(g.rnd.Intn(350000)) / 100
		_ = f.SetCell(i, "UnitPrice", price)
		_ = f.SetCell(i, "TaxAmount", price*0.08)
	}
	return f, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(f *table.Frame) error { b.rows += f.Rows(); return nil }
func (b *blackholeSink) Close() error               { return nil }

func main() {
	var (
		rows    = flag.Int("rows", 1_000_000, "total rows to generate")
		chunk   = flag.Int("chunk", 50_000, "rows per chunk")
		years   = flag.Int("years", 3, "number of distinct order years")
		missp   = flag.Float64("missing", 0.01, "probability of a missing OrderDate")
		parquet = flag.Bool("parquet", false, "write year partitions to a temp dir instead of discarding rows")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	schema := table.Schema{Columns: []table.ColumnSchema{
		{Name: "SalesOrderNumber", Type: table.KindString, Nullable: true},
		{Name: "OrderDate", Type: table.KindString, Nullable: true},
		{Name: "Item", Type: table.KindString, Nullable: true},
		{Name: "Quantity", Type: table.KindInt, Nullable: true},
		{Name: "UnitPrice", Type: table.KindFloat, Nullable: true},
		{Name: "TaxAmount", Type: table.KindFloat, Nullable: true},
	}}
	src := &genSource{schema: schema, remain: *rows, chunk: *chunk, years: *years, missp: *missp, rnd: rand.New(rand.NewSource(*seed))}

	var sink table.ChunkSink = &blackholeSink{}
	if *parquet {
		dir, err := os.MkdirTemp("", "benchstage-*")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)
		sink = parquetio.NewPartitionWriter(dir, "year")
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	n, err := table.RunStream(context.Background(), stage.Pipeline(), src, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(n) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  n,
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"chunk":                 *chunk,
		"years":                 *years,
		"parquet":               *parquet,
	}

	if *jsonOut {
		b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %s\n", humanize.Comma(int64(n)))
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %s rows/s\n", humanize.Comma(int64(rowsPerSec)))
	fmt.Printf("Current Alloc: %s\n", humanize.Bytes(msAfter.Alloc))
	fmt.Printf("Total Alloc (delta): %s\n", humanize.Bytes(msAfter.TotalAlloc-msBefore.TotalAlloc))
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
