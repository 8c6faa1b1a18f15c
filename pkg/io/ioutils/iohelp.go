package ioutils

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		br := bufio.NewReader(os.Stdin)
		if isGzip(br) {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, err
			}
			return zr, nil
		}
		return io.NopCloser(br), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if filepath.Ext(path) == ".gz" || isGzip(br) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
	}
	return readCloser{Reader: br, closeFn: f.Close}, nil
}

func isGzip(br *bufio.Reader) bool {
	b, err := br.Peek(2)
	return err == nil && len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. If the path ends in .gz, the writer is gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		// stdout: cannot detect compression; write plain
		return nopWriteCloser{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error { return firstErr(zw.Close(), f.Close()) }}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

// WriteFileAtomic copies r into a pending file and renames it over path
// once complete, so readers never observe a partial file. Nothing is left
// behind on failure.
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, err
	}
	defer func() { _ = pf.Cleanup() }()
	n, err := io.Copy(pf, r)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("replace %s: %w", path, err)
	}
	return n, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error {
	if r.closeFn != nil {
		return r.closeFn()
	}
	return errors.New("no closeFn")
}

type writeCloser struct {
	io.Writer
	closeFn func() error
}

// Close flushes buffered output and closes the underlying file, returning
// the first error of either step.
func (w writeCloser) Close() error {
	var ferr error
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		ferr = bw.Flush()
	}
	if w.closeFn == nil {
		return firstErr(ferr, errors.New("no closeFn"))
	}
	return firstErr(ferr, w.closeFn())
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error {
	if bw, ok := n.Writer.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}
