package parquetio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wdm0006/localsynapse/pkg/table"
)

func ordersFrame() *table.Frame {
	s := table.Schema{Columns: []table.ColumnSchema{
		{Name: "Item", Type: table.KindString, Nullable: true},
		{Name: "OrderDate", Type: table.KindTime, Nullable: true},
		{Name: "Quantity", Type: table.KindInt, Nullable: true},
		{Name: "year", Type: table.KindString, Nullable: true},
	}}
	f := table.NewFrame(s)
	rows := []struct {
		item string
		day  time.Time
		year string
	}{
		{"Mountain-100 Silver, 44", time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), "2019"},
		{"", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "2020"},
		{"Water Bottle - 30 oz.", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), "2020"},
	}
	for i, r := range rows {
		f.AppendNullRow()
		if r.item != "" {
			_ = f.SetCell(i, "Item", r.item)
		}
		_ = f.SetCell(i, "OrderDate", r.day)
		_ = f.SetCell(i, "Quantity", int64(i+1))
		_ = f.SetCell(i, "year", r.year)
	}
	return f
}

func TestWriteAllTextColumns(t *testing.T) {
	p := filepath.Join(t.TempDir(), "orders.parquet")
	if err := WriteAll(p, ordersFrame()); err != nil {
		t.Fatal(err)
	}
	r, err := OpenReader(p)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	f, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", f.Rows())
	}
	item, _ := f.ColumnByName("Item")
	if item.Kind() != table.KindString {
		t.Fatalf("Item kind = %s", item.Kind())
	}
	if v := item.Value(0); v != "Mountain-100 Silver, 44" {
		t.Fatalf("unexpected item %v", v)
	}
	if !item.IsNull(1) {
		t.Fatal("null item should stay null")
	}
	day, _ := f.ColumnByName("OrderDate")
	if v := day.Value(2); v != "2020-01-02" {
		t.Fatalf("dates should be stored as text, got %v", v)
	}
}

func TestPartitionsKeepTextColumns(t *testing.T) {
	root := t.TempDir()
	pw := NewPartitionWriter(root, "year")
	if err := pw.Write(ordersFrame()); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	f, err := ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", f.Rows())
	}
	item, ok := f.ColumnByName("Item")
	if !ok || item.Kind() != table.KindString {
		t.Fatalf("Item column missing or mistyped: %v", ok)
	}
	year, _ := f.ColumnByName("year")
	found := false
	for r := 0; r < f.Rows(); r++ {
		if item.Value(r) == "Water Bottle - 30 oz." {
			found = true
			if year.Value(r) != "2020" {
				t.Fatalf("row in wrong partition: %v", year.Value(r))
			}
		}
	}
	if !found {
		t.Fatal("text value lost across partitions")
	}
}
