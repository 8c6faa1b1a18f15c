package parquetio

import (
	"io"

	"github.com/wdm0006/localsynapse/pkg/table"
)

// StreamReader reads Parquet rows in chunks as Frames.
type StreamReader struct {
	r         *Reader
	chunkSize int
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 8192
	}
	return &StreamReader{r: r, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Close() error         { return s.r.Close() }
func (s *StreamReader) Schema() table.Schema { return s.r.Schema() }

func (s *StreamReader) Next() (*table.Frame, error) {
	f := table.NewFrame(s.r.schema)
	n, err := s.r.read(f, s.chunkSize)
	if n == 0 && err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, io.EOF
	}
	return f, nil
}
