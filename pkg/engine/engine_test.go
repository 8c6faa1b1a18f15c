package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/table"
)

func TestQuote(t *testing.T) {
	if got := Quote("/data/o'brien/*.csv"); got != "'/data/o''brien/*.csv'" {
		t.Fatalf("got %s", got)
	}
}

func TestNewLayout(t *testing.T) {
	l := NewLayout("/ws/data")
	if l.ParquetDir != filepath.Join("/ws/data", "parquet", "orders") {
		t.Fatalf("unexpected parquet dir %s", l.ParquetDir)
	}
	if filepath.ToSlash(l.ParquetGlob) != "/ws/data/parquet/orders/*/*.parquet" {
		t.Fatalf("unexpected parquet glob %s", l.ParquetGlob)
	}
	if filepath.ToSlash(l.JSONPath) != "/ws/data/json/orders.jsonl" {
		t.Fatalf("unexpected json path %s", l.JSONPath)
	}
}

func TestRender(t *testing.T) {
	stmts, err := Render("t", "CREATE VIEW a AS SELECT * FROM read_csv_auto({{quote .CSVGlob}});\nSELECT 1;", Layout{CSVGlob: "/d/*.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 2 || !strings.Contains(stmts[0], "read_csv_auto('/d/*.csv')") {
		t.Fatalf("unexpected statements %q", stmts)
	}
	if _, err := Render("bad", "{{.Nope}}", Layout{}); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

type failAt struct {
	n    int
	seen int
}

func (f *failAt) Exec(context.Context, string) (*table.Frame, error) {
	f.seen++
	if f.seen == f.n {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func TestRunBootstrapStopsOnFailure(t *testing.T) {
	e := &failAt{n: 2}
	err := RunBootstrap(context.Background(), e, []string{"A", "B", "C"}, nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if e.seen != 2 {
		t.Fatalf("bootstrap continued after failure: %d calls", e.seen)
	}
}
