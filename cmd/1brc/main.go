package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	rtrace "runtime/trace"
	"strings"

	"github.com/andreyvit/diff"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/weirdgiraffe/1brc-chunked/internal/buffer"
	"github.com/weirdgiraffe/1brc-chunked/internal/measure"
	"github.com/weirdgiraffe/1brc-chunked/internal/solver"
	"github.com/weirdgiraffe/1brc-chunked/internal/source"
)

const defaultFile = "measurements.txt"

var ErrOutputMismatch = errors.New("output does not match expected")

type options struct {
	file       string
	source     string
	workers    int
	bufferSize int
	expect     string
	cpuProfile string
	traceFile  string
	spansFile  string
	logLevel   slog.Level
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("1brc", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", defaultFile, "measurements file")
	fs.StringVar(&opts.source, "source", string(source.KindFile), "how chunks are read: file or mmap")
	fs.IntVar(&opts.workers, "workers", 0, "number of chunks parsed in parallel (0 means GOMAXPROCS)")
	fs.IntVar(&opts.bufferSize, "buffer", buffer.DefaultSize, "initial read buffer size per worker")
	fs.StringVar(&opts.expect, "expect", "", "compare the output with this file and print a diff")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	fs.StringVar(&opts.traceFile, "trace", "", "write an execution trace to this file")
	fs.StringVar(&opts.spansFile, "spans", "", "write OpenTelemetry spans as JSON to this file")
	fs.TextVar(&opts.logLevel, "log-level", slog.LevelInfo, "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}
	if opts.workers < 0 {
		return opts, fmt.Errorf("invalid -workers %d", opts.workers)
	}
	return opts, nil
}

func startProfiling(opts options) (stop func(), err error) {
	var stops []func()
	stop = func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			return stop, fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return stop, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if opts.traceFile != "" {
		f, err := os.Create(opts.traceFile)
		if err != nil {
			return stop, fmt.Errorf("failed to create trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			f.Close()
			return stop, fmt.Errorf("failed to start trace: %w", err)
		}
		stops = append(stops, func() {
			rtrace.Stop()
			f.Close()
		})
	}
	return stop, nil
}

// startSpans installs an SDK tracer provider exporting to opts.spansFile.
// Without the flag it returns the global provider and a no-op shutdown.
func startSpans(opts options) (trace.TracerProvider, func(context.Context) error, error) {
	if opts.spansFile == "" {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(opts.spansFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create spans file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to create span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	shutdown := func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return tp, shutdown, nil
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) (err error) {
	src, err := source.New(source.Kind(opts.source), opts.file)
	if err != nil {
		return err
	}

	tp, shutdown, err := startSpans(opts)
	if err != nil {
		return err
	}
	defer func() {
		if serr := shutdown(context.Background()); err == nil && serr != nil {
			err = fmt.Errorf("failed to flush spans: %w", serr)
		}
	}()

	table, err := solver.Solve(ctx, src, solver.Config{
		Workers:        opts.workers,
		BufferSize:     opts.bufferSize,
		Logger:         logger,
		TracerProvider: tp,
	})
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := measure.Format(&out, table); err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	out.WriteByte('\n')
	if _, err := stdout.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	logger.Info("solved", "file", opts.file, "keys", table.Len(), "bytes", src.Size())

	if opts.expect != "" {
		return compare(opts.expect, out.String())
	}
	return nil
}

// compare reports a line diff between the expected output file and got, one
// entry per line.
func compare(path, got string) error {
	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read expected output: %w", err)
	}

	expected := diff.TrimLinesInString(entriesPerLine(string(want)))
	actual := diff.TrimLinesInString(entriesPerLine(got))
	if expected == actual {
		return nil
	}
	return fmt.Errorf("%w in %s:\n%s", ErrOutputMismatch, path, diff.LineDiff(expected, actual))
}

func entriesPerLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ", ", ",\n")
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.logLevel}))
	slog.SetDefault(logger)

	stop, err := startProfiling(opts)
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "failed to start profiling: %v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), opts, os.Stdout, logger)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to solve: %v\n", err)
		os.Exit(1)
	}
}
