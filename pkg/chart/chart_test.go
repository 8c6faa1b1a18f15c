package chart

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
	"github.com/wdm0006/localsynapse/pkg/table"
)

const productsFixture = "../../examples/data/product_data/products.csv"

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)) }

func TestCategoryCounts(t *testing.T) {
	products, err := ReadProducts(filepath.FromSlash(productsFixture))
	if err != nil {
		t.Fatal(err)
	}
	f := CategoryCounts(products)
	if f.Rows() != 3 {
		t.Fatalf("expected 3 categories, got %d", f.Rows())
	}
	want := []struct {
		cat string
		n   int64
	}{{"Helmets", 2}, {"Mountain Bikes", 5}, {"Road Bikes", 1}}
	for i, w := range want {
		row := f.Row(i)
		if row[0] != w.cat || row[1] != w.n {
			t.Fatalf("row %d = %v, want %v", i, row, w)
		}
	}
}

func TestCategoryCountsSkipsMissingIDs(t *testing.T) {
	id := "1"
	f := CategoryCounts([]Product{{ProductID: &id, Category: "B"}, {Category: "B"}, {Category: "A"}})
	if f.Rows() != 2 || f.Row(0)[0] != "A" || f.Row(0)[1] != int64(0) || f.Row(1)[1] != int64(1) {
		t.Fatalf("unexpected counts %v %v", f.Row(0), f.Row(1))
	}
}

func ordersFrame() *table.Frame {
	return table.FromRecords(
		[]string{"Quantity", "UnitPrice", "TaxAmount", "year"},
		[][]any{
			{int64(1), 10.0, 0.8, "2019"},
			{int64(2), 5.0, 0.8, "2019"},
			{int64(1), 3.333, 0.0, "2020"},
		})
}

func TestYearlyRevenue(t *testing.T) {
	dir := t.TempDir()
	pw := parquetio.NewPartitionWriter(dir, "year")
	if err := pw.Write(ordersFrame()); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	f, err := YearlyRevenue(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 2 {
		t.Fatalf("expected 2 years, got %d", f.Rows())
	}
	if r := f.Row(0); r[0] != "2019" || r[1] != 21.6 {
		t.Fatalf("unexpected 2019 row %v", r)
	}
	if r := f.Row(1); r[0] != "2020" || r[1] != 3.33 {
		t.Fatalf("unexpected 2020 row %v", r)
	}
}

func TestVisualizeSkipsRevenueWithoutPartitions(t *testing.T) {
	out := t.TempDir()
	var logs bytes.Buffer
	res, err := Visualize(context.Background(), Options{
		ProductsCSV: filepath.FromSlash(productsFixture),
		ParquetDir:  filepath.Join(t.TempDir(), "parquet", "orders"),
		OutDir:      out,
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.RevenueSkipped {
		t.Fatal("revenue step should be skipped")
	}
	if _, err := os.Stat(filepath.Join(out, "products_by_category.png")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "revenue_by_year.png")); !os.IsNotExist(err) {
		t.Fatal("revenue chart should not exist")
	}
	if !strings.Contains(logs.String(), "Skip revenue plot") {
		t.Fatalf("missing skip log:\n%s", logs.String())
	}
}

func TestVisualizeWithPartitions(t *testing.T) {
	pq := t.TempDir()
	pw := parquetio.NewPartitionWriter(pq, "year")
	if err := pw.Write(ordersFrame()); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	var console bytes.Buffer
	res, err := Visualize(context.Background(), Options{
		ProductsCSV: filepath.FromSlash(productsFixture),
		ParquetDir:  pq,
		OutDir:      out,
		Logger:      quiet(),
		Out:         &console,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", res.Files)
	}
	b, err := os.ReadFile(filepath.Join(out, "yearly_revenue.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "year,GrossRevenue\n2019,21.6\n2020,3.33\n" {
		t.Fatalf("unexpected revenue csv %q", b)
	}
	if console.Len() == 0 {
		t.Fatal("expected console plot")
	}
}

func TestVisualizeEmptyProducts(t *testing.T) {
	dir := t.TempDir()
	products := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(products, []byte("ProductID,ProductName,Category,ListPrice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	if _, err := Visualize(context.Background(), Options{
		ProductsCSV: products,
		ParquetDir:  filepath.Join(dir, "missing"),
		OutDir:      out,
		Logger:      quiet(),
	}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(out, "products_counts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Category,ProductCount\n" {
		t.Fatalf("expected header-only counts, got %q", b)
	}
	if st, err := os.Stat(filepath.Join(out, "products_by_category.png")); err != nil || st.Size() == 0 {
		t.Fatalf("empty chart not written: %v", err)
	}
}
