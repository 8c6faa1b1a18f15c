// Package fetch downloads the sample datasets into the workspace.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
)

const base = "https://raw.githubusercontent.com/MicrosoftLearning/dp-203-azure-data-engineer/master/Allfiles/labs"

// Source is one remote file and where it lands.
type Source struct {
	Dest string
	URL  string
}

// ProductsSources lists the product catalogue under dataDir.
func ProductsSources(dataDir string) []Source {
	return []Source{
		{Dest: filepath.Join(dataDir, "product_data", "products.csv"), URL: base + "/01/adventureworks/products.csv"},
	}
}

// RetailSources lists the RetailDB lake tables under dataDir.
func RetailSources(dataDir string) []Source {
	lake := filepath.Join(dataDir, "lake", "RetailDB")
	return []Source{
		{Dest: filepath.Join(lake, "Customer", "customer.csv"), URL: base + "/04/data/customer.csv"},
		{Dest: filepath.Join(lake, "Product", "product.csv"), URL: base + "/04/data/product.csv"},
		{Dest: filepath.Join(lake, "SalesOrder", "salesorder.csv"), URL: base + "/04/data/salesorder.csv"},
	}
}

// Fetcher downloads sources one at a time. A zero Timeout means no limit.
type Fetcher struct {
	Client      *http.Client
	Timeout     time.Duration
	CheckStatus bool
	Logger      *slog.Logger
}

// Products returns the fetcher settings used for the product catalogue.
func Products(log *slog.Logger) *Fetcher {
	return &Fetcher{Timeout: 60 * time.Second, CheckStatus: true, Logger: log}
}

// Retail returns the fetcher settings used for the RetailDB tables.
func Retail(log *slog.Logger) *Fetcher {
	return &Fetcher{CheckStatus: true, Logger: log}
}

type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// FetchAll downloads every source in order and stops at the first failure.
// It returns the bytes written per destination.
func (f *Fetcher) FetchAll(ctx context.Context, srcs []Source) (map[string]int64, error) {
	sizes := make(map[string]int64, len(srcs))
	for _, s := range srcs {
		n, err := f.Fetch(ctx, s)
		if err != nil {
			return sizes, err
		}
		sizes[s.Dest] = n
	}
	return sizes, nil
}

// Fetch downloads one source, replacing any existing file.
func (f *Fetcher) Fetch(ctx context.Context, s Source) (int64, error) {
	log := f.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(s.Dest), 0o755); err != nil {
		return 0, err
	}
	log.Info(fmt.Sprintf("-> downloading %s -> %s", s.URL, s.Dest))
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if f.CheckStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return 0, &StatusError{URL: s.URL, Code: resp.StatusCode}
	}
	n, err := iox.WriteFileAtomic(s.Dest, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", s.Dest, err)
	}
	log.Info("downloaded", "path", s.Dest, "size", humanize.Bytes(uint64(n)))
	return n, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}
