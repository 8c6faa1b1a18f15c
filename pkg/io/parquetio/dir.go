package parquetio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// ReadDir reads every .parquet file under a hive-partitioned directory.
// Each key=value directory level contributes a string column named key;
// files placed directly under dir are read too.
func ReadDir(dir string) (*table.Frame, error) {
	var names []string
	seen := map[string]bool{}
	var records [][]any

	addName := func(n string) int {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
		for i, x := range names {
			if x == n {
				return i
			}
		}
		return -1
	}

	var walk func(path string, parts [][2]string) error
	walk = func(path string, parts [][2]string) error {
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			full := filepath.Join(path, e.Name())
			if e.IsDir() {
				k, v, ok := strings.Cut(e.Name(), "=")
				if !ok {
					continue
				}
				next := append(append([][2]string(nil), parts...), [2]string{k, v})
				if err := walk(full, next); err != nil {
					return err
				}
				continue
			}
			if !strings.HasSuffix(e.Name(), ".parquet") {
				continue
			}
			r, err := OpenReader(full)
			if err != nil {
				return err
			}
			f, err := r.ReadAll()
			_ = r.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", full, err)
			}
			idx := make([]int, f.Cols())
			for c := 0; c < f.Cols(); c++ {
				idx[c] = addName(f.Column(c).Name())
			}
			pidx := make([]int, len(parts))
			for i, p := range parts {
				pidx[i] = addName(p[0])
			}
			for row := 0; row < f.Rows(); row++ {
				rec := make([]any, len(names))
				for c, v := range f.Row(row) {
					rec[idx[c]] = v
				}
				for i, p := range parts {
					if p[1] != "NULL" {
						rec[pidx[i]] = p[1]
					}
				}
				records = append(records, rec)
			}
		}
		return nil
	}
	if err := walk(dir, nil); err != nil {
		return nil, err
	}
	return table.FromRecords(names, records), nil
}
