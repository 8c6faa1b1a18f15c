package jsonlio

import (
	"bufio"
	"io"

	jsoniter "github.com/json-iterator/go"

	iox "github.com/wdm0006/localsynapse/pkg/io/ioutils"
	"github.com/wdm0006/localsynapse/pkg/table"
)

type StreamReader struct {
	r         *Reader
	schema    table.Schema
	chunkSize int
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
	r, err := Open(path, ReaderOptions{SampleRows: 100})
	if err != nil {
		return nil, err
	}
	schema, err := r.InferSchema()
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return &StreamReader{r: r, schema: schema, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Next() (*table.Frame, error) {
	if s.chunkSize <= 0 {
		s.chunkSize = 1024
	}
	f := table.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		m, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		appendObject(f, m)
	}
	return f, nil
}

func (s *StreamReader) Schema() table.Schema { return s.schema }
func (s *StreamReader) Close() error         { return s.r.Close() }

// StreamWriter appends each chunk as JSON Lines; the file is replaced on open.
type StreamWriter struct {
	enc  *jsoniter.Encoder
	w    *bufio.Writer
	out  io.WriteCloser
	rows int
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(out)
	return &StreamWriter{enc: json.NewEncoder(w), w: w, out: out}, nil
}

func (s *StreamWriter) Write(f *table.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		if err := s.enc.Encode(record(f, r)); err != nil {
			return err
		}
		s.rows++
	}
	return s.w.Flush()
}

// Rows reports how many objects have been written so far.
func (s *StreamWriter) Rows() int { return s.rows }

func (s *StreamWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.out.Close()
		return err
	}
	return s.out.Close()
}
