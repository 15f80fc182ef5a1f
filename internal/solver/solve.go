// Package solver computes per-key min/mean/max over a "key;value" file by
// parsing naive byte-range chunks in parallel and stitching the records cut
// by chunk boundaries back together afterwards.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/weirdgiraffe/1brc-chunked/internal/buffer"
	"github.com/weirdgiraffe/1brc-chunked/internal/chunk"
	"github.com/weirdgiraffe/1brc-chunked/internal/measure"
	"github.com/weirdgiraffe/1brc-chunked/internal/source"
)

const instrumentationName = "github.com/weirdgiraffe/1brc-chunked/internal/solver"

type Config struct {
	// Workers is the number of chunks parsed in parallel. Zero means
	// GOMAXPROCS.
	Workers int
	// BufferSize is the initial read buffer capacity of each worker.
	BufferSize int
	Logger     *slog.Logger
	// TracerProvider receives the solve, chunk, merge and reconcile spans.
	// Nil means the global provider.
	TracerProvider trace.TracerProvider
}

func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.BufferSize <= 0 {
		c.BufferSize = buffer.DefaultSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	return c
}

// Solve aggregates every record of src. One worker runs per planned chunk and
// all of them finish before anything is merged. The first failing worker
// cancels the rest and no partial result is returned.
func Solve(ctx context.Context, src source.Source, cfg Config) (_ *measure.Table, err error) {
	cfg = cfg.withDefaults()
	if cfg.Workers < 1 {
		return nil, ErrNoWorkers
	}

	tracer := cfg.TracerProvider.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "solve", trace.WithAttributes(
		attribute.Int("workers", cfg.Workers),
		attribute.Int64("input.size", src.Size()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ranges := chunk.Plan(cfg.Workers, src.Size())
	cfg.Logger.Debug("planned chunks", "workers", cfg.Workers, "size", src.Size())

	outcomes := make([]*Outcome, len(ranges))
	eg, ectx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		eg.Go(func() error {
			out, err := ProcessChunk(ectx, src, r, cfg.BufferSize)
			if err != nil {
				return fmt.Errorf("chunk %d %v: %w", i, r, err)
			}
			cfg.Logger.Debug("chunk done",
				"chunk", i,
				"range", r.String(),
				"records", out.Records,
				"leftover", len(out.Fragments[0].Bytes))
			outcomes[i] = out
			return nil
		})
	}

	err = eg.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to process chunks: %w", err)
	}

	_, mergeSpan := tracer.Start(ctx, "merge")
	merged := Reduce(outcomes)
	mergeSpan.End()

	_, reconcileSpan := tracer.Start(ctx, "reconcile")
	table, err := Reconcile(merged)
	reconcileSpan.SetAttributes(attribute.Int64("records", merged.Records))
	reconcileSpan.End()
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("records", merged.Records),
		attribute.Int("keys", table.Len()),
	)
	cfg.Logger.Debug("reconciled leftovers",
		"fragments", len(merged.Fragments),
		"records", merged.Records,
		"keys", table.Len())
	return table, nil
}
