package stream

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"dcmstream/internal/cmdutil"
	"dcmstream/internal/manifest"
	"dcmstream/internal/pairs"
)

// LoadFunc turns one file pair into a sample. The worker treats a panic
// inside the function the same as a returned error: log, skip, continue.
type LoadFunc[T any] func(p pairs.FilePair) (T, error)

// Batch groups exactly BatchSize samples. Only full batches are ever
// emitted; samples left over at end-of-input are dropped, preserving the
// strict-batch-size behavior downstream training loops rely on.
type Batch[T any] struct {
	Samples []T
}

// Config controls one stream invocation.
type Config struct {
	BatchSize  int // samples per batch (>= 1)
	QueueDepth int // bounded channel capacity; <= 0 means 2
	Log        io.Writer
	Quiet      bool
}

// Collect resolves the study manifest and matches every study's
// directories, flattening all discovered pairs into one list. Any failure
// here is a setup error: it aborts before a worker ever starts.
func Collect(dataRoot string) ([]pairs.FilePair, error) {
	links, err := manifest.Resolve(dataRoot)
	if err != nil {
		return nil, err
	}
	var all []pairs.FilePair
	for _, l := range links {
		fp, err := pairs.Match(l.ImageDir, l.ContourDir)
		if err != nil {
			return nil, fmt.Errorf("study %s: %w", l.ImageDir, err)
		}
		all = append(all, fp...)
	}
	return all, nil
}

// Shuffle permutes list in place. This is the pipeline's sole
// randomization point. seed 0 draws a fresh seed, so re-invocation
// produces a different order; a fixed seed reproduces one.
func Shuffle(list []pairs.FilePair, seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
}

// Batches starts the producer goroutine and returns its output channel.
// The caller ranges over the channel; when it is closed the worker has
// already finished. The list must not be mutated after the call.
//
// The channel's bounded capacity is the backpressure mechanism: a slow
// consumer blocks the worker rather than growing memory. Cancelling ctx
// unblocks a worker stuck on a full channel and ends the stream early.
func Batches[T any](ctx context.Context, cfg Config, list []pairs.FilePair, load LoadFunc[T]) <-chan Batch[T] {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = 2
	}

	out := make(chan Batch[T], depth)
	go func() {
		defer close(out)
		cmdutil.Logf(cfg.Log, cfg.Quiet, "worker started: %d pairs, batch size %d", len(list), batchSize)

		acc := make([]T, 0, batchSize)
		for _, p := range list {
			s, err := tryLoad(load, p)
			if err != nil {
				cmdutil.Warnf(cfg.Log, cfg.Quiet, "skipping pair (%s, %s): %v", p.ImagePath, p.ContourPath, err)
				continue
			}
			acc = append(acc, s)
			if len(acc) < batchSize {
				continue
			}
			select {
			case out <- Batch[T]{Samples: acc}:
			case <-ctx.Done():
				return
			}
			acc = make([]T, 0, batchSize)
		}
		// A trailing partial batch is dropped, not flushed.
		if len(acc) > 0 {
			cmdutil.Logf(cfg.Log, cfg.Quiet, "dropping trailing partial batch of %d", len(acc))
		}
	}()
	return out
}

// tryLoad confines loader failures, including panics, to the one pair
// being loaded.
func tryLoad[T any](load LoadFunc[T], p pairs.FilePair) (s T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader panic: %v", r)
		}
	}()
	return load(p)
}
