// Package derive adds computed columns to frames.
package derive

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// dateLayouts are tried in order when the source column holds text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// Year adds a string column To holding the four-digit year of From. Rows
// whose date is null or unparsable get a null year.
type Year struct {
	From string
	To   string
}

func (t *Year) Name() string { return "derive_year" }

func (t *Year) Apply(ctx context.Context, f *table.Frame) (*table.Frame, error) {
	src, ok := f.ColumnByName(t.From)
	if !ok {
		return f, nil
	}
	out := table.NewStringColumn(t.To, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		d, ok := dateOf(src, i)
		if !ok {
			continue
		}
		out.Set(i, strconv.Itoa(d.Year()))
	}
	return f.WithColumn(out)
}

func dateOf(c table.Column, i int) (time.Time, bool) {
	switch col := c.(type) {
	case *table.TimeColumn:
		return col.Get(i)
	case *table.StringColumn:
		s, ok := col.Get(i)
		if !ok {
			return time.Time{}, false
		}
		return ParseDate(s)
	}
	return time.Time{}, false
}

// ParseDate parses the date formats found in the sample retail files.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
