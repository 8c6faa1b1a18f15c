package jsonlio

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/wdm0006/localsynapse/pkg/table"
)

func TestStreamReadJSONL(t *testing.T) {
	p := filepath.FromSlash("../../../examples/data/json/orders.jsonl")
	sr, err := NewStreamReader(p, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sr.Close() }()
	total := 0
	for {
		fr, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += fr.Rows()
	}
	if total != 3 {
		t.Fatalf("expected 3 rows, got %d", total)
	}
}

func TestWriteAllThenRead(t *testing.T) {
	s := table.Schema{Columns: []table.ColumnSchema{
		{Name: "OrderDate", Type: table.KindTime, Nullable: true},
		{Name: "Quantity", Type: table.KindInt, Nullable: true},
	}}
	f := table.NewFrame(s)
	f.AppendNullRow()
	_ = f.SetCell(0, "OrderDate", time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC))
	_ = f.SetCell(0, "Quantity", int64(2))
	f.AppendNullRow()

	p := filepath.Join(t.TempDir(), "orders.jsonl.gz")
	if err := WriteAll(p, f); err != nil {
		t.Fatal(err)
	}
	r, err := Open(p, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Rows())
	}
	col, _ := out.ColumnByName("OrderDate")
	if v, _ := col.(*table.StringColumn).Get(0); v != "2019-07-01" {
		t.Fatalf("dates should be written as plain dates, got %q", v)
	}
}
