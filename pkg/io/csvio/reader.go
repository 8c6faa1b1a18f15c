package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
	"github.com/wdm0006/localsynapse/pkg/table"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
}

type Reader struct {
	r   *csv.Reader
	rc  io.ReadCloser
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

var (
	numre  = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)
	datere = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([ T]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`)
)

// timeLayouts cover the ISO shapes datere accepts.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// Open opens a (possibly gzipped) CSV file. Close the Reader when done.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(rc)
	// sniff delimiter if 0
	if opt.Delimiter == 0 {
		if d, lazy, err := sniffDelimiterAndQuotes(path); err == nil && d != 0 {
			rr.Comma = d
			rr.LazyQuotes = lazy
		}
	} else {
		rr.Comma = opt.Delimiter
	}
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, rc: rc, opt: opt}, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (table.Schema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		return table.Schema{}, nil, err
	}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		rec, err = r.r.Read()
		if err == io.EOF {
			// header only
			return schemaOf(names, make([]table.Kind, len(names))), names, nil
		}
		if err != nil {
			return table.Schema{}, nil, err
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	// ReuseRecord means rec is overwritten by the next Read
	sample := [][]string{append([]string(nil), rec...)}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for i := 1; i < max; i++ {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Schema{}, nil, err
		}
		sample = append(sample, append([]string(nil), rr...))
	}

	kinds := inferKinds(sample, len(names))
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schemaOf(names, kinds), names, nil
}

func schemaOf(names []string, kinds []table.Kind) table.Schema {
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for i := range names {
		k := kinds[i]
		if k == table.KindInvalid {
			k = table.KindString
		}
		schema.Columns[i] = table.ColumnSchema{Name: names[i], Type: k, Nullable: true}
	}
	return schema
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		rec, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// next drains buffered records from inference before reading on.
func (r *Reader) next() ([]string, error) {
	if len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		return rec, nil
	}
	return r.r.Read()
}

func (r *Reader) appendRecord(f *table.Frame, schema table.Schema, rec []string) error {
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	// append a null row then set non-empty values
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			r.shortRecords++
			if r.opt.Strict {
				return fmt.Errorf("csv short record at row %d: need %d fields, got %d", row+1, len(schema.Columns), len(rec))
			}
			break
		}
		setParsed(f, row, cs, rec[i])
	}
	return nil
}

func setParsed(f *table.Frame, row int, cs table.ColumnSchema, raw string) {
	val := strings.ToValidUTF8(strings.TrimSpace(raw), "?")
	if val == "" {
		return
	}
	switch cs.Type {
	case table.KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case table.KindTime:
		if t, ok := parseTime(val); ok {
			_ = f.SetCell(row, cs.Name, t)
		}
	default:
		_ = f.SetCell(row, cs.Name, val)
	}
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func inferKinds(rows [][]string, ncol int) []table.Kind {
	kinds := make([]table.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, date, str := 0, 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			switch {
			case numre.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case datere.MatchString(v):
				date++
			default:
				lv := strings.ToLower(v)
				if lv == "true" || lv == "false" {
					boolean++
					continue
				}
				str++
			}
		}
		switch {
		case boolean > 0 && num == 0 && date == 0 && str == 0:
			kinds[c] = table.KindBool
		case date > 0 && num == 0 && str == 0 && boolean == 0:
			kinds[c] = table.KindTime
		// prefer float over int to be permissive
		case num > 0 && str == 0 && date == 0 && boolean == 0:
			if integer == num {
				kinds[c] = table.KindInt
			} else {
				kinds[c] = table.KindFloat
			}
		default:
			kinds[c] = table.KindString
		}
	}
	return kinds
}

func sniffDelimiterAndQuotes(path string) (rune, bool, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', false, nil
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	// odd quote counts usually mean a stray quote inside a field
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount%2 != 0, nil
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
