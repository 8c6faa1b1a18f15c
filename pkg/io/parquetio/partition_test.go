package parquetio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wdm0006/localsynapse/pkg/table"
)

func TestPartitionWriterLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "orders")
	// a file from an earlier run in another partition must survive
	stale := filepath.Join(root, "year=2018")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stale, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	pw := NewPartitionWriter(root, "year")
	if err := pw.Write(makeFrame(10)); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	if got := pw.Partitions(); len(got) != 2 || got[0] != "2019" || got[1] != "2020" {
		t.Fatalf("unexpected partitions %v", got)
	}
	for _, y := range []string{"2019", "2020"} {
		if _, err := os.Stat(filepath.Join(root, "year="+y, "data_0.parquet")); err != nil {
			t.Fatalf("missing partition file for %s: %v", y, err)
		}
	}
	if _, err := os.Stat(filepath.Join(stale, "keep.txt")); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}

	f, err := ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 10 {
		t.Fatalf("expected 10 rows, got %d", f.Rows())
	}
	yc, ok := f.ColumnByName("year")
	if !ok {
		t.Fatal("partition column not injected")
	}
	n2019 := 0
	for r := 0; r < f.Rows(); r++ {
		if yc.Value(r) == "2019" {
			n2019++
		}
	}
	if n2019 != 5 {
		t.Fatalf("expected 5 rows in 2019, got %d", n2019)
	}
	qc, _ := f.ColumnByName("Quantity")
	if qc.Kind() != table.KindInt {
		t.Fatalf("Quantity kind = %s", qc.Kind())
	}
}

func TestPartitionWriterOverwrites(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 2; i++ {
		pw := NewPartitionWriter(root, "year")
		if err := pw.Write(makeFrame(4)); err != nil {
			t.Fatal(err)
		}
		if err := pw.Close(); err != nil {
			t.Fatal(err)
		}
	}
	f, err := ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 4 {
		t.Fatalf("second run should replace the files, got %d rows", f.Rows())
	}
}

func TestReadDirMissing(t *testing.T) {
	if _, err := ReadDir(filepath.Join(t.TempDir(), "nope")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
