package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot/vg"

	"github.com/wdm0006/localsynapse/pkg/io/csvio"
)

type Options struct {
	ProductsCSV string
	ParquetDir  string
	OutDir      string
	Logger      *slog.Logger
	// Out receives the console rendition of the revenue series.
	Out io.Writer
}

// Result lists the files Visualize wrote.
type Result struct {
	Files          []string
	RevenueSkipped bool
}

// Visualize writes the product-count and yearly-revenue tables and charts.
// Missing partitions skip the revenue step without failing.
func Visualize(ctx context.Context, o Options) (Result, error) {
	var res Result
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return res, err
	}

	products, err := ReadProducts(o.ProductsCSV)
	if err != nil {
		return res, fmt.Errorf("products: %w", err)
	}
	counts := CategoryCounts(products)
	csvPath := filepath.Join(o.OutDir, "products_counts.csv")
	if err := csvio.WriteAll(csvPath, counts, csvio.WriterOptions{}); err != nil {
		return res, err
	}
	res.Files = append(res.Files, csvPath)
	labels, values := series(counts)
	img := filepath.Join(o.OutDir, "products_by_category.png")
	err = Render(img, Bar{
		Title: "Product Counts by Category", XLabel: "Category", YLabel: "Products",
		Labels: labels, Values: values, RotateLabels: true,
		Width: 12 * vg.Inch, Height: 6 * vg.Inch,
	})
	if err != nil {
		return res, fmt.Errorf("render %s: %w", img, err)
	}
	res.Files = append(res.Files, img)
	log.Info("Saved chart → " + img)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	revenue, err := YearlyRevenue(o.ParquetDir)
	if errors.Is(err, ErrNoPartitions) {
		log.Info(fmt.Sprintf("Skip revenue plot: %s not found. Run DuckDB first.", o.ParquetDir))
		res.RevenueSkipped = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("revenue: %w", err)
	}
	csvPath = filepath.Join(o.OutDir, "yearly_revenue.csv")
	if err := csvio.WriteAll(csvPath, revenue, csvio.WriterOptions{}); err != nil {
		return res, err
	}
	res.Files = append(res.Files, csvPath)
	labels, values = series(revenue)
	img = filepath.Join(o.OutDir, "revenue_by_year.png")
	err = Render(img, Bar{
		Title: "Gross Revenue by Year (Parquet partitions)", XLabel: "Year", YLabel: "Gross Revenue",
		Labels: labels, Values: values,
	})
	if err != nil {
		return res, fmt.Errorf("render %s: %w", img, err)
	}
	res.Files = append(res.Files, img)
	log.Info("Saved chart → " + img)

	if o.Out != nil && len(values) > 1 {
		fmt.Fprintln(o.Out, asciigraph.Plot(values, asciigraph.Height(8), asciigraph.Caption("Gross revenue by year "+labels[0]+".."+labels[len(labels)-1])))
	}
	return res, nil
}
