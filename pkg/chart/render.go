// Package chart computes the product and revenue aggregates and draws them
// as PNG bar charts.
package chart

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Bar describes a bar chart.
type Bar struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
	// RotateLabels tilts category names so long ones do not overlap.
	RotateLabels bool
	Width        vg.Length
	Height       vg.Length
}

// Render saves b as an image; the format follows the file extension.
// Without values only the titled axes are drawn.
func Render(path string, b Bar) error {
	p := plot.New()
	p.Title.Text = b.Title
	p.X.Label.Text = b.XLabel
	p.Y.Label.Text = b.YLabel
	p.Y.Min = 0

	if len(b.Values) > 0 {
		bars, err := plotter.NewBarChart(plotter.Values(b.Values), vg.Points(20))
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.NominalX(b.Labels...)
	} else {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
	}
	if b.RotateLabels {
		p.X.Tick.Label.Rotation = math.Pi / 3
		p.X.Tick.Label.XAlign = text.XRight
	}
	w, h := b.Width, b.Height
	if w == 0 {
		w = 8 * vg.Inch
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	return p.Save(w, h, path)
}
