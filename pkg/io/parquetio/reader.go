package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/localsynapse/pkg/table"
)

type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema table.Schema
	conv   []func(parquet.Value) any
}

// OpenReader opens a flat Parquet file. The Frame schema comes from the
// file footer rather than from sampled rows.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	schema, conv, err := frameSchema(pf.Schema())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r := parquet.NewReader(pf)
	return &Reader{file: f, reader: r, schema: schema, conv: conv}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() table.Schema { return r.schema }

func (r *Reader) ReadAll() (*table.Frame, error) {
	f := table.NewFrame(r.schema)
	for {
		n, err := r.read(f, 1024)
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return f, nil
		}
	}
}

// read appends up to max rows to f.
func (r *Reader) read(f *table.Frame, max int) (int, error) {
	rows := make([]parquet.Row, max)
	n, err := r.reader.ReadRows(rows)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		row := f.Rows() - 1
		for _, v := range rows[i] {
			c := v.Column()
			if c < 0 || c >= len(r.conv) || v.IsNull() {
				continue
			}
			_ = f.SetCell(row, r.schema.Columns[c].Name, r.conv[c](v))
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if err != nil {
		return n, io.EOF
	}
	return n, nil
}

func frameSchema(s *parquet.Schema) (table.Schema, []func(parquet.Value) any, error) {
	fields := s.Fields()
	out := table.Schema{Columns: make([]table.ColumnSchema, len(fields))}
	conv := make([]func(parquet.Value) any, len(fields))
	for i, fd := range fields {
		if !fd.Leaf() {
			return table.Schema{}, nil, fmt.Errorf("nested column %s is not supported", fd.Name())
		}
		k, fn := columnKind(fd.Type())
		out.Columns[i] = table.ColumnSchema{Name: fd.Name(), Type: k, Nullable: true}
		conv[i] = fn
	}
	return out, conv, nil
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func columnKind(t parquet.Type) (table.Kind, func(parquet.Value) any) {
	if lt := t.LogicalType(); lt != nil && lt.Date != nil {
		return table.KindTime, func(v parquet.Value) any { return epoch.AddDate(0, 0, int(v.Int32())) }
	}
	switch t.Kind() {
	case parquet.Boolean:
		return table.KindBool, func(v parquet.Value) any { return v.Boolean() }
	case parquet.Int32:
		return table.KindInt, func(v parquet.Value) any { return int64(v.Int32()) }
	case parquet.Int64:
		return table.KindInt, func(v parquet.Value) any { return v.Int64() }
	case parquet.Float:
		return table.KindFloat, func(v parquet.Value) any { return float64(v.Float()) }
	case parquet.Double:
		return table.KindFloat, func(v parquet.Value) any { return v.Double() }
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return table.KindString, func(v parquet.Value) any { return string(v.ByteArray()) }
	default:
		return table.KindString, func(v parquet.Value) any { return v.String() }
	}
}
