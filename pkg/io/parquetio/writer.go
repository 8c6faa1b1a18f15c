package parquetio

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	pw "github.com/xitongsys/parquet-go/writer"

	jsoniter "github.com/json-iterator/go"

	"github.com/wdm0006/localsynapse/pkg/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func parquetSchemaJSON(s table.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case table.KindFloat:
			tag += "DOUBLE"
		case table.KindInt:
			tag += "INT64"
		case table.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StreamWriter writes Frames to one Parquet file. Time cells are stored
// as text in the same form the CSV writer uses.
type StreamWriter struct {
	file   source.ParquetFile
	writer *pw.JSONWriter
	schema table.Schema
	rows   int
}

func NewStreamWriter(path string, s table.Schema) (*StreamWriter, error) {
	js, err := parquetSchemaJSON(s)
	if err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, err
	}
	w, err := pw.NewJSONWriter(js, fw, 4)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet writer init: %w", err)
	}
	return &StreamWriter{file: fw, writer: w, schema: s}, nil
}

func (s *StreamWriter) Write(f *table.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		if err := s.writeRow(f, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamWriter) writeRow(f *table.Frame, r int) error {
	rec := make(map[string]any, len(s.schema.Columns))
	for _, cs := range s.schema.Columns {
		col, ok := f.ColumnByName(cs.Name)
		if !ok {
			continue
		}
		v := col.Value(r)
		if v == nil {
			continue
		}
		if cs.Type == table.KindString || cs.Type == table.KindTime {
			v = table.Format(v)
		}
		rec[cs.Name] = v
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.writer.Write(string(b)); err != nil {
		return fmt.Errorf("parquet write row: %w", err)
	}
	s.rows++
	return nil
}

// Rows reports how many rows have been written.
func (s *StreamWriter) Rows() int { return s.rows }

func (s *StreamWriter) Close() error {
	if err := s.writer.WriteStop(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// WriteAll writes a Frame to a single Parquet file.
func WriteAll(path string, f *table.Frame) error {
	w, err := NewStreamWriter(path, f.Schema())
	if err != nil {
		return err
	}
	if err := w.Write(f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
