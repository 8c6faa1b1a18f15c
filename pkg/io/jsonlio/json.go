package jsonlio

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/wdm0006/localsynapse/pkg/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// record converts row r of f into a JSON object; nulls are omitted and
// times are written in the same text form as CSV output.
func record(f *table.Frame, r int) map[string]any {
	m := make(map[string]any, f.Cols())
	for c := 0; c < f.Cols(); c++ {
		col := f.Column(c)
		v := col.Value(r)
		if v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok {
			v = table.FormatTime(t)
		}
		m[col.Name()] = v
	}
	return m
}
