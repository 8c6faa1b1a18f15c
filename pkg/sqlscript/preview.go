package sqlscript

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// Preview renders at most max rows of f as a text table.
func Preview(w io.Writer, f *table.Frame, max int) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(f.Schema().Names())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	n := f.Rows()
	if max > 0 && n > max {
		n = max
	}
	for r := 0; r < n; r++ {
		row := f.Row(r)
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = table.Format(v)
		}
		tw.Append(cells)
	}
	tw.Render()
	if n < f.Rows() {
		fmt.Fprintf(w, "(%d of %d rows)\n", n, f.Rows())
	}
}
