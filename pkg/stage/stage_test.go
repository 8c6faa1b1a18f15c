package stage

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/io/parquetio"
)

func TestRunStagesJSONAndPartitions(t *testing.T) {
	ws := t.TempDir()
	o := Options{
		CSVGlob:    filepath.FromSlash("../../examples/data/csv/*.csv"),
		JSONPath:   filepath.Join(ws, "json", "orders.jsonl"),
		ParquetDir: filepath.Join(ws, "parquet", "orders"),
		ChunkSize:  4,
		Logger:     slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
	res, err := Run(context.Background(), o)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 6 {
		t.Fatalf("expected 6 rows, got %d", res.Rows)
	}
	if len(res.Partitions) != 2 || res.Partitions[0] != "2019" || res.Partitions[1] != "2020" {
		t.Fatalf("unexpected partitions %v", res.Partitions)
	}

	f, err := os.Open(o.JSONPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	if lines != 6 {
		t.Fatalf("expected one JSON line per row, got %d", lines)
	}

	entries, err := os.ReadDir(o.ParquetDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 partition dirs, got %d", len(entries))
	}
	fr, err := parquetio.ReadDir(o.ParquetDir)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 6 {
		t.Fatalf("expected 6 parquet rows, got %d", fr.Rows())
	}

	// a second run replaces the partition files instead of adding to them
	if _, err := Run(context.Background(), o); err != nil {
		t.Fatal(err)
	}
	fr, err = parquetio.ReadDir(o.ParquetDir)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 6 {
		t.Fatalf("rerun duplicated rows: %d", fr.Rows())
	}
}

func TestRunNoInput(t *testing.T) {
	_, err := Run(context.Background(), Options{CSVGlob: filepath.Join(t.TempDir(), "*.csv")})
	if err == nil {
		t.Fatal("expected error when no CSV matches")
	}
}
