package jsonlio

import (
	"github.com/wdm0006/localsynapse/pkg/table"
)

// WriteAll writes a Frame as JSON Lines, gzip-compressed for .gz paths.
func WriteAll(path string, f *table.Frame) error {
	w, err := NewStreamWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
