package parquetio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// PartitionWriter is a table.ChunkSink that splits rows into hive-style
// key=value directories under Root. The partition column is not stored in
// the files. Existing files with the same name are overwritten and every
// other file is left alone.
type PartitionWriter struct {
	Root   string
	Column string
	// File is the name written inside each partition; data_0.parquet when empty.
	File string

	schema  table.Schema
	writers map[string]*StreamWriter
}

func NewPartitionWriter(root, column string) *PartitionWriter {
	return &PartitionWriter{Root: root, Column: column, writers: map[string]*StreamWriter{}}
}

func (p *PartitionWriter) Write(f *table.Frame) error {
	col, ok := f.ColumnByName(p.Column)
	if !ok {
		return fmt.Errorf("partition column %s not found", p.Column)
	}
	if p.writers == nil {
		p.writers = map[string]*StreamWriter{}
	}
	if p.schema.Columns == nil {
		for _, cs := range f.Schema().Columns {
			if cs.Name != p.Column {
				p.schema.Columns = append(p.schema.Columns, cs)
			}
		}
	}
	for r := 0; r < f.Rows(); r++ {
		key := "NULL"
		if v := col.Value(r); v != nil {
			key = table.Format(v)
		}
		w, err := p.writer(key)
		if err != nil {
			return err
		}
		if err := w.writeRow(f, r); err != nil {
			return err
		}
	}
	return nil
}

func (p *PartitionWriter) writer(key string) (*StreamWriter, error) {
	if w, ok := p.writers[key]; ok {
		return w, nil
	}
	dir := filepath.Join(p.Root, p.Column+"="+key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := p.File
	if name == "" {
		name = "data_0.parquet"
	}
	w, err := NewStreamWriter(filepath.Join(dir, name), p.schema)
	if err != nil {
		return nil, err
	}
	p.writers[key] = w
	return w, nil
}

// Partitions lists the partition values written so far.
func (p *PartitionWriter) Partitions() []string {
	keys := make([]string, 0, len(p.writers))
	for k := range p.writers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *PartitionWriter) Close() error {
	var errs []error
	for _, k := range p.Partitions() {
		if err := p.writers[k].Close(); err != nil {
			errs = append(errs, fmt.Errorf("partition %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
