package cli

import (
	"flag"
	"testing"
)

func newFS() *flag.FlagSet { return flag.NewFlagSet("test", flag.ContinueOnError) }

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestDefaults(t *testing.T) {
	o := mustParse(t, "--data", "final_data")
	if o.BatchSize != 8 || o.QueueDepth != 2 || o.Output != "text" || o.Stub {
		t.Errorf("unexpected defaults %+v", o)
	}
}

func TestAllFlags(t *testing.T) {
	o := mustParse(t,
		"--data", "d",
		"--batch-size", "4",
		"--queue-depth", "1",
		"--seed", "42",
		"--resize", "128",
		"--output", "json",
		"--stub", "--quiet",
	)
	if o.BatchSize != 4 || o.Seed != 42 || o.Resize != 128 || o.Output != "json" || !o.Stub || !o.Quiet {
		t.Errorf("bad parse %+v", o)
	}
}

func TestErrorMissingData(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"--batch-size", "4"}); err == nil {
		t.Fatal("expected error when --data missing")
	}
}

func TestErrorBadBatchSize(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"--data", "d", "--batch-size", "0"}); err == nil {
		t.Fatal("expected error for batch size < 1")
	}
}

func TestErrorBadQueueDepth(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"--data", "d", "--queue-depth", "0"}); err == nil {
		t.Fatal("expected error for queue depth < 1")
	}
}

func TestErrorBadOutput(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"--data", "d", "--output", "xml"}); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestVersionSkipsValidation(t *testing.T) {
	o := mustParse(t, "--version")
	if !o.Version {
		t.Fatal("version flag not set")
	}
}
