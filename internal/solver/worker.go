package solver

import (
	"bytes"
	"cmp"
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slices"

	"github.com/weirdgiraffe/1brc-chunked/internal/buffer"
	"github.com/weirdgiraffe/1brc-chunked/internal/chunk"
	"github.com/weirdgiraffe/1brc-chunked/internal/measure"
	"github.com/weirdgiraffe/1brc-chunked/internal/source"
)

// Fragment holds the bytes of Range that could not be parsed inside it: the
// head of a line cut by Range.Start followed by the incomplete record cut by
// Range.End.
type Fragment struct {
	Range chunk.Range
	Bytes []byte
}

// Outcome is what one worker, or a merge of any set of workers, produced.
type Outcome struct {
	Table     *measure.Table
	Fragments []Fragment
	Records   int64
}

// Ranges returns the ranges the outcome was built from in file order.
func (o *Outcome) Ranges() []chunk.Range {
	o.sortFragments()
	ranges := make([]chunk.Range, len(o.Fragments))
	for i, f := range o.Fragments {
		ranges[i] = f.Range
	}
	return ranges
}

// Leftover joins the fragments in file order.
func (o *Outcome) Leftover() []byte {
	o.sortFragments()
	var n int
	for _, f := range o.Fragments {
		n += len(f.Bytes)
	}
	out := make([]byte, 0, n)
	for _, f := range o.Fragments {
		out = append(out, f.Bytes...)
	}
	return out
}

func (o *Outcome) sortFragments() {
	slices.SortStableFunc(o.Fragments, func(a, b Fragment) int {
		if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Range.End, b.Range.End)
	})
}

// ProcessChunk parses the records that lie entirely inside r. Chunk
// boundaries ignore lines, so a range that does not start at offset 0 is
// assumed to start mid-line: everything up to and including its first
// newline goes to the leftover, as does the incomplete record at the end.
//
// The chunk span is started on the tracer provider of the span in ctx, if
// any.
func ProcessChunk(ctx context.Context, src source.Source, r chunk.Range, bufSize int) (*Outcome, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer(instrumentationName)
	_, span := tracer.Start(ctx, "chunk", trace.WithAttributes(
		attribute.Int64("chunk.start", r.Start),
		attribute.Int64("chunk.end", r.End),
	))
	defer span.End()

	rc, err := src.Open(r)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out := &Outcome{
		Table: measure.NewTable(),
	}
	var leftover []byte
	buf := buffer.New(bufSize)
	midLine := r.Start != 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf.Compact()
		n, err := buf.Fill(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk: %w", err)
		}
		if n == 0 {
			break
		}

		if midLine {
			i := bytes.IndexByte(buf.View(), '\n')
			if i == -1 {
				continue
			}
			leftover = append(leftover, buf.View()[:i+1]...)
			buf.Consume(i + 1)
			midLine = false
		}

		consumed, records := measure.ParseRecords(buf.View(), out.Table)
		buf.Consume(consumed)
		out.Records += int64(records)
	}

	// Either the record cut by r.End, or the whole range when it held no
	// newline at all.
	leftover = append(leftover, buf.View()...)
	out.Fragments = []Fragment{{Range: r, Bytes: leftover}}

	span.SetAttributes(
		attribute.Int64("chunk.records", out.Records),
		attribute.Int("chunk.leftover", len(leftover)),
	)
	return out, nil
}
