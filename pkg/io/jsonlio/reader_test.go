package jsonlio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/table"
)

func TestJSONLInferAndRead(t *testing.T) {
	p := filepath.FromSlash("../../../examples/data/json/orders.jsonl")
	r, err := Open(p, ReaderOptions{SampleRows: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Columns) == 0 {
		t.Fatal("no columns inferred")
	}
	if schema.Columns[0].Name != "CustomerName" {
		t.Fatalf("columns should be sorted, first is %q", schema.Columns[0].Name)
	}
	kinds := map[string]table.Kind{}
	for _, cs := range schema.Columns {
		kinds[cs.Name] = cs.Type
	}
	if kinds["Quantity"] != table.KindInt || kinds["UnitPrice"] != table.KindFloat {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", fr.Rows())
	}
}

func TestReadLinesWidensAndKeepsNested(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mixed.jsonl")
	body := "{\"a\":1,\"tags\":[\"x\",\"y\"]}\n\n{\"a\":2.5,\"b\":true}\n   \n{\"a\":3}\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
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
	kinds := map[string]table.Kind{}
	for _, cs := range schema.Columns {
		kinds[cs.Name] = cs.Type
	}
	if kinds["a"] != table.KindFloat || kinds["b"] != table.KindBool || kinds["tags"] != table.KindString {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	fr, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", fr.Rows())
	}
	a, _ := fr.ColumnByName("a")
	if v, _ := a.(*table.FloatColumn).Get(2); v != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
	tags, _ := fr.ColumnByName("tags")
	if v, _ := tags.(*table.StringColumn).Get(0); v != `["x","y"]` {
		t.Fatalf("nested value should keep its JSON text, got %q", v)
	}
	if !tags.IsNull(1) {
		t.Fatal("missing key should be null")
	}
}

func TestReadReportsBadLine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(p, []byte("{\"a\":1}\nnot json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(p, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	if _, err := r.InferSchema(); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}
