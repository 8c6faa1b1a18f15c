package sqlscript

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wdm0006/localsynapse/pkg/io/csvio"
	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
	"github.com/wdm0006/localsynapse/pkg/table"
)

// ResultWriter persists the result of a script and returns where it went.
type ResultWriter interface {
	WriteResult(script string, f *table.Frame) (string, error)
}

var csvOpts = csvio.WriterOptions{Delimiter: ','}

// FileResultWriter writes <Dir>/<Prefix>_<script>.csv.
type FileResultWriter struct {
	Dir    string
	Prefix string
}

func (w FileResultWriter) WriteResult(script string, f *table.Frame) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s_%s.csv", w.Prefix, script))
	if err := writeCSV(path, f); err != nil {
		return "", err
	}
	return path, nil
}

// DirResultWriter replaces <Dir>/<Prefix>_<script>.csv_dir with a single
// part-00000.csv and an empty _SUCCESS marker.
type DirResultWriter struct {
	Dir    string
	Prefix string
}

func (w DirResultWriter) WriteResult(script string, f *table.Frame) (string, error) {
	dir := filepath.Join(w.Dir, fmt.Sprintf("%s_%s.csv_dir", w.Prefix, script))
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "part-00000.csv"), f); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "_SUCCESS"), nil, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

func writeCSV(path string, f *table.Frame) error {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, f, csvOpts); err != nil {
		return err
	}
	_, err := iox.WriteFileAtomic(path, &buf)
	return err
}
