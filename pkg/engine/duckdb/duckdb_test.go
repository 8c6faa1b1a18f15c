package duckdb

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/engine"
	"github.com/wdm0006/localsynapse/pkg/sqlscript"
)

// dataDir copies the sales fixtures into a fresh workspace data dir.
func dataDir(t *testing.T) string {
	t.Helper()
	data := filepath.Join(t.TempDir(), "data")
	for _, p := range []string{"csv/sales.csv", "json/orders.jsonl"} {
		b, err := os.ReadFile(filepath.FromSlash("../../../examples/data/" + p))
		if err != nil {
			t.Fatal(err)
		}
		dst := filepath.Join(data, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dst, b, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return data
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)) }

func TestBootstrapPartitionsByYear(t *testing.T) {
	if testing.Short() {
		t.Skip("duckdb integration")
	}
	data := dataDir(t)
	e, err := Open("", quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = e.Close() }()
	l := engine.NewLayout(data)
	ctx := context.Background()
	if err := e.Bootstrap(ctx, l); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(l.ParquetDir)
	if err != nil {
		t.Fatal(err)
	}
	var years []string
	for _, en := range entries {
		if en.IsDir() {
			years = append(years, en.Name())
		}
	}
	if len(years) != 2 || years[0] != "year=2019" || years[1] != "year=2020" {
		t.Fatalf("unexpected partitions %v", years)
	}

	f, err := e.Exec(ctx, "SELECT year, count(*) AS n FROM orders_parquet GROUP BY year ORDER BY year")
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %v", f)
	}
	if f, err := e.Exec(ctx, "CREATE TABLE t AS SELECT 1 AS x"); err != nil || f != nil {
		t.Fatalf("ddl should return no frame: %v %v", f, err)
	}
	// rerunning the bootstrap replaces rather than duplicates partition files
	if err := e.Bootstrap(ctx, l); err != nil {
		t.Fatal(err)
	}
	f, err = e.Exec(ctx, "SELECT count(*) FROM orders_parquet")
	if err != nil {
		t.Fatal(err)
	}
	if n := f.Row(0)[0]; n != int64(6) {
		t.Fatalf("expected 6 rows after rerun, got %v", n)
	}
}

func TestRunnerAgainstDuckDB(t *testing.T) {
	if testing.Short() {
		t.Skip("duckdb integration")
	}
	data := dataDir(t)
	sqlDir := t.TempDir()
	script := "SELECT * FROM no_such_table;\nSELECT year, round(sum(Quantity * UnitPrice + TaxAmount), 2) AS GrossRevenue FROM orders_parquet GROUP BY year ORDER BY year;"
	if err := os.WriteFile(filepath.Join(sqlDir, "yearly.sql"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := Open("", quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = e.Close() }()
	ctx := context.Background()
	if err := e.Bootstrap(ctx, engine.NewLayout(data)); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	r := &sqlscript.Runner{Exec: e, Writer: sqlscript.FileResultWriter{Dir: out, Prefix: "duckdb"}, Logger: quiet()}
	rep, err := r.RunDir(ctx, sqlDir)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Failed != 1 || len(rep.Outputs) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if _, err := os.Stat(filepath.Join(out, "duckdb_yearly.csv")); err != nil {
		t.Fatal(err)
	}
}

func TestExecReportsResultSets(t *testing.T) {
	if testing.Short() {
		t.Skip("duckdb integration")
	}
	e, err := Open("", quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = e.Close() }()
	ctx := context.Background()
	for _, stmt := range []string{
		"CREATE TABLE s (y INTEGER, v INTEGER)",
		"INSERT INTO s VALUES (2019, 1), (2020, 2)",
		"CREATE TABLE w AS SELECT 1 AS a, 2 AS b",
	} {
		if f, err := e.Exec(ctx, stmt); err != nil || f != nil {
			t.Fatalf("%q should return no frame: %v %v", stmt, f, err)
		}
	}
	cases := []struct {
		stmt string
		rows int
	}{
		{"INSERT INTO s VALUES (2021, 3) RETURNING *", 1},
		{"PIVOT s ON y USING sum(v)", 1},
		{"UNPIVOT w ON a, b INTO NAME k VALUE val", 2},
	}
	for _, c := range cases {
		f, err := e.Exec(ctx, c.stmt)
		if err != nil {
			t.Fatalf("%q: %v", c.stmt, err)
		}
		if f == nil || f.Rows() != c.rows {
			t.Fatalf("%q: expected %d rows, got %v", c.stmt, c.rows, f)
		}
	}
	f, err := e.Exec(ctx, "CALL duckdb_functions()")
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Rows() == 0 {
		t.Fatal("CALL should return the function list")
	}
}
