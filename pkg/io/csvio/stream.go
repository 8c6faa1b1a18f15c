package csvio

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	schema    table.Schema
	chunkSize int
}

// NewStreamReader opens the file, infers schema (respecting options), and returns a StreamReader.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	rr, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	schema, _, err := rr.InferSchema()
	if err != nil {
		_ = rr.Close()
		return nil, err
	}
	return &StreamReader{r: rr, schema: schema, chunkSize: chunkSize}, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*table.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := table.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		rec, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.r.appendRecord(f, s.schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *StreamReader) Schema() table.Schema { return s.schema }
func (s *StreamReader) Warnings() string     { return s.r.Warnings() }
func (s *StreamReader) Close() error         { return s.r.Close() }

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	w           *csv.Writer
	file        *os.File
	wroteHeader bool
	schema      table.Schema
}

func NewStreamWriter(path string, schema table.Schema, opt WriterOptions) (*StreamWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	return &StreamWriter{w: w, file: f, schema: schema}, nil
}

func (s *StreamWriter) Write(fr *table.Frame) error {
	if !s.wroteHeader {
		if err := s.w.Write(s.schema.Names()); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	if err := writeRows(s.w, fr, s.schema); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *StreamWriter) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
