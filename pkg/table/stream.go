package table

import (
	"context"
	"errors"
	"io"
)

// ChunkSource yields frames in chunks until io.EOF.
type ChunkSource interface {
	Next() (*Frame, error)
}

// ChunkSink consumes frames, typically writing them out.
type ChunkSink interface {
	Write(*Frame) error
	Close() error
}

// RunStream pulls chunks from src, applies the pipeline, and writes to sink.
// It returns the number of rows written. The sink is always closed.
func RunStream(ctx context.Context, p *Pipeline, src ChunkSource, sink ChunkSink) (rows int, err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		f, err := src.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		out, err := p.Run(ctx, f)
		if err != nil {
			return rows, err
		}
		if err := sink.Write(out); err != nil {
			return rows, err
		}
		rows += out.Rows()
	}
}

// MultiSink fans every chunk out to several sinks in order.
type MultiSink []ChunkSink

func (m MultiSink) Write(f *Frame) error {
	for _, s := range m {
		if err := s.Write(f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and reports all failures.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChainSource reads each source to exhaustion before moving to the next.
// Sources that also implement io.Closer are closed once drained.
type ChainSource []ChunkSource

func (c *ChainSource) Next() (*Frame, error) {
	for len(*c) > 0 {
		f, err := (*c)[0].Next()
		if err == io.EOF {
			if cl, ok := (*c)[0].(io.Closer); ok {
				_ = cl.Close()
			}
			*c = (*c)[1:]
			continue
		}
		return f, err
	}
	return nil, io.EOF
}
