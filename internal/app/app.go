// Package app wires flags, discovery, and the batch stream into the
// dcmstream command.
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"dcmstream/internal/cli"
	"dcmstream/internal/cmdutil"
	"dcmstream/internal/loader"
	"dcmstream/internal/pairs"
	"dcmstream/internal/stream"
	"dcmstream/internal/version"
	"dcmstream/internal/writers"
)

func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("dcmstream")
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return 2
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "dcmstream version %s\n", version.Version)
		return 0
	}
	if _, ok := os.LookupEnv(cli.StubEnv); ok {
		opts.Stub = true
	}

	// Setup failures (bad manifest, unreadable directories) abort here,
	// before the worker starts.
	list, err := stream.Collect(opts.DataRoot)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	stream.Shuffle(list, opts.Seed)
	cmdutil.Logf(stderr, opts.Quiet, "matched %d pairs under %s", len(list), opts.DataRoot)

	cfg := stream.Config{
		BatchSize:  opts.BatchSize,
		QueueDepth: opts.QueueDepth,
		Log:        stderr,
		Quiet:      opts.Quiet,
	}

	if opts.Stub {
		ch := stream.Batches(ctx, cfg, list, loader.Passthrough)
		return consume(ctx, opts, outw, stderr, ch, describeStub)
	}
	ld := loader.New(loader.Config{Resize: opts.Resize, Log: stderr, Quiet: opts.Quiet})
	ch := stream.Batches(ctx, cfg, list, ld.Load)
	return consume(ctx, opts, outw, stderr, ch, describeLoaded)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// consume drains the batch channel until the worker signals end-of-stream,
// rendering each batch as text or a JSONL record.
func consume[T any](
	ctx context.Context,
	opts cli.Options,
	outw *bufio.Writer,
	stderr io.Writer,
	ch <-chan stream.Batch[T],
	describe func(stream.Batch[T]) writers.BatchRecord,
) int {
	runID := uuid.NewString()

	var jsonIn chan<- writers.BatchRecord
	var jsonErr <-chan error
	if opts.Output == "json" {
		jsonIn, jsonErr = writers.StartBatchJSONL(outw, opts.QueueDepth)
	}

	n := 0
	var werr error
	writerDead := false
	for b := range ch {
		rec := describe(b)
		rec.RunID = runID
		rec.Batch = n
		n++
		if jsonIn == nil {
			printText(outw, rec)
			continue
		}
		if writerDead || ctx.Err() != nil {
			// Keep draining so the worker can run to completion.
			continue
		}
		// Never send bare: a writer that died on a write error stops
		// draining jsonIn, and a blocked send must stay interruptible.
		select {
		case jsonIn <- rec:
		case werr = <-jsonErr:
			writerDead = true
		case <-ctx.Done():
		}
	}

	if jsonIn != nil {
		if !writerDead {
			close(jsonIn)
			select {
			case werr = <-jsonErr:
			case <-ctx.Done():
				return 130
			}
		}
		if writers.IsBrokenPipe(werr) {
			return 0
		}
		if werr != nil {
			_, _ = fmt.Fprintln(stderr, werr)
			return 3
		}
	}
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if ctx.Err() != nil {
		return 130
	}
	cmdutil.Logf(stderr, opts.Quiet, "stream %s finished: %d batches", runID, n)
	return 0
}

func describeLoaded(b stream.Batch[loader.Sample]) writers.BatchRecord {
	rec := writers.BatchRecord{Samples: len(b.Samples)}
	if len(b.Samples) > 0 {
		rec.Rows = len(b.Samples[0].Pixels)
		if rec.Rows > 0 {
			rec.Cols = len(b.Samples[0].Pixels[0])
		}
	}
	return rec
}

func describeStub(b stream.Batch[pairs.FilePair]) writers.BatchRecord {
	rec := writers.BatchRecord{Samples: len(b.Samples)}
	for _, p := range b.Samples {
		rec.Images = append(rec.Images, p.ImagePath)
		rec.Contours = append(rec.Contours, p.ContourPath)
	}
	return rec
}

func printText(out io.Writer, rec writers.BatchRecord) {
	if rec.Rows > 0 {
		_, _ = fmt.Fprintf(out, "batch %d: %d samples %dx%d\n", rec.Batch, rec.Samples, rec.Rows, rec.Cols)
	} else {
		_, _ = fmt.Fprintf(out, "batch %d: %d samples\n", rec.Batch, rec.Samples)
	}
	for i := range rec.Images {
		_, _ = fmt.Fprintf(out, "  %s\t%s\n", rec.Images[i], rec.Contours[i])
	}
}
