package jsonlio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
	"github.com/wdm0006/localsynapse/pkg/table"
)

// maxLine bounds a single JSON object.
const maxLine = 16 << 20

type ReaderOptions struct {
	SampleRows int
}

// Reader decodes one JSON object per line. Blank lines are skipped.
type Reader struct {
	rc   io.ReadCloser
	sc   *bufio.Scanner
	opt  ReaderOptions
	line int
	buf  []map[string]any
}

func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{rc: rc, sc: sc, opt: opt}, nil
}

func (r *Reader) Close() error { return r.rc.Close() }

// InferSchema samples the first objects; columns are the union of their
// keys in sorted order.
func (r *Reader) InferSchema() (table.Schema, error) {
	n := r.opt.SampleRows
	if n <= 0 {
		n = 100
	}
	kinds := map[string]table.Kind{}
	for len(r.buf) < n {
		m, err := r.decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for k, v := range m {
			kinds[k] = table.MergeKind(kinds[k], table.KindOf(v))
		}
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	s := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for i, k := range names {
		kind := kinds[k]
		if kind == table.KindInvalid {
			kind = table.KindString
		}
		s.Columns[i] = table.ColumnSchema{Name: k, Type: kind, Nullable: true}
	}
	return s, nil
}

func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		m, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		appendObject(f, m)
	}
}

// next drains the inference sample before decoding further lines.
func (r *Reader) next() (map[string]any, error) {
	if len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		return m, nil
	}
	return r.decode()
}

func (r *Reader) decode() (map[string]any, error) {
	for r.sc.Scan() {
		r.line++
		b := bytes.TrimSpace(r.sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		for k, v := range m {
			m[k] = cellValue(v)
		}
		return m, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// cellValue maps a decoded JSON value onto a Frame value. Whole numbers
// become ints; arrays and objects keep their JSON text.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// appendObject adds m as a new row. Values that do not fit their
// column's kind are rendered as text for string columns and left null
// otherwise.
func appendObject(f *table.Frame, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		v := m[cs.Name]
		if v == nil {
			continue
		}
		switch k := table.KindOf(v); {
		case k == cs.Type, cs.Type == table.KindFloat && k == table.KindInt:
			_ = f.SetCell(row, cs.Name, v)
		case cs.Type == table.KindString:
			_ = f.SetCell(row, cs.Name, table.Format(v))
		}
	}
}
