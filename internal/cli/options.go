// Package cli parses flags for the dcmstream command.
package cli

import (
	"errors"
	"flag"
	"fmt"
)

// StubEnv: when this environment variable is present the production loader
// is swapped for the pass-through loader, so the batching protocol can be
// driven without real imaging files.
const StubEnv = "DCMSTREAM_STUB"

// Options holds all CLI flags.
type Options struct {
	DataRoot string

	BatchSize  int
	QueueDepth int
	Seed       int64
	Resize     int

	Output string // text | json
	Stub   bool
	Quiet  bool

	Version bool
}

// ParseArgs registers and parses all flags, returning an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.DataRoot, "data", "", "data root holding link.csv, dicoms/ and contourfiles/ [*]")

	fs.IntVar(&opt.BatchSize, "batch-size", 8, "samples per batch [8]")
	fs.IntVar(&opt.QueueDepth, "queue-depth", 2, "pending batches buffered between worker and consumer [2]")
	fs.Int64Var(&opt.Seed, "seed", 0, "shuffle seed (0 = random each run) [0]")
	fs.IntVar(&opt.Resize, "resize", 0, "resize samples to NxN pixels (0 = native dims) [0]")

	fs.StringVar(&opt.Output, "output", "text", "output format: text | json [text]")
	fs.BoolVar(&opt.Stub, "stub", false, "use the pass-through loader (also set by $"+StubEnv+") [false]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress progress and warnings [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "suppress progress and warnings (shorthand) [false]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	// Validation
	if opt.DataRoot == "" {
		return opt, errors.New("--data is required")
	}
	if opt.BatchSize < 1 {
		return opt, errors.New("--batch-size must be ≥ 1")
	}
	if opt.QueueDepth < 1 {
		return opt, errors.New("--queue-depth must be ≥ 1")
	}
	if opt.Resize < 0 {
		return opt, errors.New("--resize must be ≥ 0")
	}
	if opt.Output != "text" && opt.Output != "json" {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	return opt, nil
}
