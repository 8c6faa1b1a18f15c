package table

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// FromRecords builds a Frame from row-major driver values. Column kinds are
// taken from the first non-null value of each column after normalization;
// columns whose values disagree fall back to string.
func FromRecords(names []string, records [][]any) *Frame {
	norm := make([][]any, len(records))
	for r, rec := range records {
		row := make([]any, len(names))
		for c := range names {
			if c < len(rec) {
				row[c] = Normalize(rec[c])
			}
		}
		norm[r] = row
	}

	kinds := make([]Kind, len(names))
	for c := range names {
		kinds[c] = columnKind(norm, c)
	}
	s := Schema{Columns: make([]ColumnSchema, len(names))}
	for c, n := range names {
		s.Columns[c] = ColumnSchema{Name: n, Type: kinds[c], Nullable: true}
	}

	f := NewFrame(s)
	for r, row := range norm {
		f.AppendNullRow()
		for c, v := range row {
			if v == nil {
				continue
			}
			if kinds[c] == KindString {
				if _, ok := v.(string); !ok {
					v = Format(v)
				}
			}
			_ = f.SetCell(r, names[c], v)
		}
	}
	return f
}

func columnKind(rows [][]any, c int) Kind {
	k := KindInvalid
	for _, row := range rows {
		if row[c] == nil {
			continue
		}
		if k = MergeKind(k, KindOf(row[c])); k == KindString {
			break
		}
	}
	if k == KindInvalid {
		return KindString
	}
	return k
}

// KindOf reports the Frame kind of a normalized value. Nil is KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindInvalid
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case time.Time:
		return KindTime
	default:
		return KindString
	}
}

// MergeKind widens a column kind seen so far with the kind of one more
// value. Ints widen to floats; any other disagreement yields string.
func MergeKind(have, next Kind) Kind {
	switch {
	case next == KindInvalid:
		return have
	case have == KindInvalid || have == next:
		return next
	case (have == KindInt && next == KindFloat) || (have == KindFloat && next == KindInt):
		return KindFloat
	default:
		return KindString
	}
}

type float64er interface{ Float64() float64 }

// Normalize maps database/sql and Spark driver values onto the Go types a
// Frame stores: bool, int64, float64, string, time.Time, or nil.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, int64, float64, string, time.Time:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t <= 1<<63-1 {
			return int64(t)
		}
		return strconv.FormatUint(t, 10)
	case float32:
		return float64(t)
	case *big.Int:
		if t == nil {
			return nil
		}
		if t.IsInt64() {
			return t.Int64()
		}
		return t.String()
	case []byte:
		return string(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case float64er:
		return t.Float64()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Format renders a normalized cell for CSV and console output. Nulls
// render as the empty string.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return FormatTime(t)
	default:
		return fmt.Sprintf("%v", Normalize(t))
	}
}

// FormatTime prints dates without a clock and everything else as a
// timestamp.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999")
	}
	return t.Format("2006-01-02 15:04:05")
}
