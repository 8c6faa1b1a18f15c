package table

import (
	"context"
	"testing"
)

func TestRunStreamMultiSinkChain(t *testing.T) {
	a := &sliceSource{frames: []*Frame{makeFrame(3), makeFrame(2)}}
	b := &sliceSource{frames: []*Frame{makeFrame(4)}}
	src := ChainSource{a, b}
	s1, s2 := &countSink{}, &countSink{}
	n, err := RunStream(context.Background(), NewPipeline(), &src, MultiSink{s1, s2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 || s1.rows != 9 || s2.rows != 9 {
		t.Fatalf("expected 9 rows everywhere, got n=%d s1=%d s2=%d", n, s1.rows, s2.rows)
	}
	if !s1.closed || !s2.closed {
		t.Fatal("sinks not closed")
	}
}

func TestWithColumnReplaces(t *testing.T) {
	f := makeFrame(2)
	c := NewStringColumn("Item", 2)
	c.Set(0, "a")
	out, err := f.WithColumn(c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Cols() != f.Cols() {
		t.Fatalf("replacing should keep %d columns, got %d", f.Cols(), out.Cols())
	}
	if _, err := f.WithColumn(NewStringColumn("short", 1)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
