package ioutils

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGzipRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "orders.jsonl.gz")
	w, err := CreateMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "{\"a\":1}\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := OpenMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\"a\":1}\n" {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "products.csv")
	if err := os.WriteFile(p, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := WriteFileAtomic(p, strings.NewReader("new"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bytes, got %d", n)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "new" {
		t.Fatalf("unexpected content %q", b)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary file left behind: %d entries", len(entries))
	}
}

type failWriter struct{ err error }

func (f failWriter) Write(p []byte) (int, error) { return 0, f.err }

func TestWriteCloserReportsFlushError(t *testing.T) {
	want := errors.New("disk full")
	closed := false
	w := writeCloser{
		Writer:  bufio.NewWriterSize(failWriter{want}, 16),
		closeFn: func() error { closed = true; return nil },
	}
	if _, err := io.WriteString(w, "short"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); !errors.Is(err, want) {
		t.Fatalf("expected flush error, got %v", err)
	}
	if !closed {
		t.Fatal("file should still be closed after a failed flush")
	}
}

func TestWriteCloserReportsCloseError(t *testing.T) {
	want := errors.New("close failed")
	w := writeCloser{Writer: io.Discard, closeFn: func() error { return want }}
	if err := w.Close(); !errors.Is(err, want) {
		t.Fatalf("expected close error, got %v", err)
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFileAtomicKeepsOldFileOnError(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "customer.csv")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteFileAtomic(p, io.MultiReader(strings.NewReader("partial"), failReader{})); err == nil {
		t.Fatal("expected error")
	}
	b, _ := os.ReadFile(p)
	if string(b) != "old" {
		t.Fatalf("existing file replaced by partial write: %q", b)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("pending file left behind: %d entries", len(entries))
	}
}
