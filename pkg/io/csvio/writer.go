package csvio

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/wdm0006/localsynapse/pkg/table"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers, replacing the file.
func WriteAll(path string, f *table.Frame, opt WriterOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write encodes a Frame with a header row to w.
func Write(w io.Writer, f *table.Frame, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}
	if err := writeRows(cw, f, f.Schema()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// writeRows emits fr's rows in the column order of schema.
func writeRows(w *csv.Writer, fr *table.Frame, schema table.Schema) error {
	cols := make([]table.Column, len(schema.Columns))
	for c, cs := range schema.Columns {
		cols[c], _ = fr.ColumnByName(cs.Name)
	}
	row := make([]string, len(cols))
	for r := 0; r < fr.Rows(); r++ {
		for c, col := range cols {
			if col == nil {
				row[c] = ""
				continue
			}
			row[c] = table.Format(col.Value(r))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
