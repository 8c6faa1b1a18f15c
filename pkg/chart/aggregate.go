package chart

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"sort"

	"github.com/jszwec/csvutil"

	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
	"github.com/wdm0006/localsynapse/pkg/table"
)

// ErrNoPartitions means the partitioned orders table has not been written.
var ErrNoPartitions = errors.New("no parquet partitions")

// Product is one row of products.csv; empty cells decode to nil.
type Product struct {
	ProductID   *string  `csv:"ProductID"`
	ProductName string   `csv:"ProductName"`
	Category    string   `csv:"Category"`
	ListPrice   *float64 `csv:"ListPrice"`
}

func ReadProducts(path string) ([]Product, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	dec, err := csvutil.NewDecoder(csv.NewReader(rc))
	if err != nil {
		return nil, err
	}
	var out []Product
	for {
		var p Product
		if err := dec.Decode(&p); err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}

// CategoryCounts counts products with a ProductID per Category, ordered by
// category name.
func CategoryCounts(products []Product) *table.Frame {
	counts := map[string]int64{}
	for _, p := range products {
		if _, ok := counts[p.Category]; !ok {
			counts[p.Category] = 0
		}
		if p.ProductID != nil {
			counts[p.Category]++
		}
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	recs := make([][]any, len(cats))
	for i, c := range cats {
		recs[i] = []any{c, counts[c]}
	}
	return typed(table.Schema{Columns: []table.ColumnSchema{
		{Name: "Category", Type: table.KindString, Nullable: true},
		{Name: "ProductCount", Type: table.KindInt, Nullable: true},
	}}, recs)
}

// YearlyRevenue reads every partition under dir and returns
// round(sum(Quantity * UnitPrice + TaxAmount), 2) per year, ordered by year.
func YearlyRevenue(dir string) (*table.Frame, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoPartitions
	}
	f, err := parquetio.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	if f.Rows() == 0 {
		return nil, ErrNoPartitions
	}
	cols := make([]table.Column, 4)
	for i, n := range []string{"year", "Quantity", "UnitPrice", "TaxAmount"} {
		c, ok := f.ColumnByName(n)
		if !ok {
			return nil, errors.New("orders partitions have no " + n + " column")
		}
		cols[i] = c
	}
	sums := map[string]float64{}
	for r := 0; r < f.Rows(); r++ {
		y := cols[0].Value(r)
		if y == nil {
			continue
		}
		key := table.Format(y)
		if _, ok := sums[key]; !ok {
			sums[key] = 0
		}
		q, ok1 := number(cols[1].Value(r))
		p, ok2 := number(cols[2].Value(r))
		t, ok3 := number(cols[3].Value(r))
		if ok1 && ok2 && ok3 {
			sums[key] += q*p + t
		}
	}
	years := make([]string, 0, len(sums))
	for y := range sums {
		years = append(years, y)
	}
	sort.Strings(years)
	recs := make([][]any, len(years))
	for i, y := range years {
		recs[i] = []any{y, math.Round(sums[y]*100) / 100}
	}
	return typed(table.Schema{Columns: []table.ColumnSchema{
		{Name: "year", Type: table.KindString, Nullable: true},
		{Name: "GrossRevenue", Type: table.KindFloat, Nullable: true},
	}}, recs), nil
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func typed(s table.Schema, recs [][]any) *table.Frame {
	f := table.NewFrame(s)
	for r, rec := range recs {
		f.AppendNullRow()
		for c, v := range rec {
			_ = f.SetCell(r, s.Columns[c].Name, v)
		}
	}
	return f
}

// series splits a two-column aggregate into bar labels and heights.
func series(f *table.Frame) ([]string, []float64) {
	labels := make([]string, f.Rows())
	values := make([]float64, f.Rows())
	for r := 0; r < f.Rows(); r++ {
		row := f.Row(r)
		labels[r] = table.Format(row[0])
		values[r], _ = number(row[1])
	}
	return labels, values
}
