package profile

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/localsynapse/pkg/table"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

// Mean is zero for an all-null column.
func (n *NumStats) Mean() float64 {
	if n.Count == 0 {
		return 0
	}
	return n.Sum / float64(n.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind table.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Collector accumulates per-column statistics over a stream of Frames
// sharing one schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	rows  int
}

func NewCollector(schema table.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case table.KindFloat, table.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case table.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Rows is the number of rows consumed so far.
func (c *Collector) Rows() int { return c.rows }

func (c *Collector) Columns() []ColumnProfile { return c.cols }

func (c *Collector) ConsumeFrame(f *table.Frame) {
	c.rows += f.Rows()
	for i := 0; i < f.Cols(); i++ {
		col := f.Column(i)
		idx, ok := c.index[col.Name()]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		for r := 0; r < col.Len(); r++ {
			v := col.Value(r)
			switch {
			case cp.Num != nil:
				if v == nil {
					cp.Num.Nulls++
					continue
				}
				var fv float64
				switch t := v.(type) {
				case int64:
					fv = float64(t)
				case float64:
					fv = t
				default:
					continue
				}
				cp.Num.Count++
				cp.Num.Min = math.Min(cp.Num.Min, fv)
				cp.Num.Max = math.Max(cp.Num.Max, fv)
				cp.Num.Sum += fv
			case cp.Bool != nil:
				if v == nil {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if v == true {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			default:
				if v == nil {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[table.Format(v)]++
				}
			}
		}
	}
}

// Write consumes a chunk; Collector doubles as a table.ChunkSink.
func (c *Collector) Write(f *table.Frame) error {
	c.ConsumeFrame(f)
	return nil
}

func (c *Collector) Close() error { return nil }

type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Top returns the k most frequent values, ties broken by value.
func (s *StringStats) Top(k int) []Freq {
	arr := make([]Freq, 0, len(s.Freqs))
	for v, n := range s.Freqs {
		arr = append(arr, Freq{Value: v, Count: n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%s): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", cp.Num.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d\n", cp.Str.Count, cp.Str.Nulls, len(cp.Str.Freqs))
			for _, fq := range cp.Str.Top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", fq.Value, fq.Count)
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows    int          `json:"rows"`
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Str  *JSONStr   `json:"str,omitempty"`
}

type JSONStr struct {
	Count int    `json:"count"`
	Nulls int    `json:"nulls"`
	Top   []Freq `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), Num: cp.Num, Bool: cp.Bool}
		if cp.Num != nil && cp.Num.Count == 0 {
			// infinities do not encode
			jc.Num = &NumStats{Nulls: cp.Num.Nulls}
		}
		if cp.Str != nil {
			jc.Str = &JSONStr{Count: cp.Str.Count, Nulls: cp.Str.Nulls}
			if c.topK > 0 {
				jc.Str.Top = cp.Str.Top(c.topK)
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}

// Source is a chunk source that knows its schema.
type Source interface {
	table.ChunkSource
	Schema() table.Schema
}

// Collect drains src into a new Collector.
func Collect(src Source, topK int) (*Collector, error) {
	c := NewCollector(src.Schema(), topK)
	for {
		f, err := src.Next()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return nil, err
		}
		c.ConsumeFrame(f)
	}
}
