package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// Trim strips surrounding whitespace from a string column, or from every
// string column when Column is empty.
type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	if t.Column != "" {
		if col, ok := f.ColumnByName(t.Column); ok {
			trimColumn(col)
		}
		return f, nil
	}
	for i := 0; i < f.Cols(); i++ {
		trimColumn(f.Column(i))
	}
	return f, nil
}

func trimColumn(col table.Column) {
	c, ok := col.(*table.StringColumn)
	if !ok {
		return
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v, _ := c.Get(i)
		c.Set(i, strings.TrimSpace(v))
	}
}
