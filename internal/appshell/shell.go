package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main adapts a RunContext-style entry point to a process: it installs
// signal handling, forwards stdio, and exits with the run's code.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	// Normalize cancellation exit code.
	if ctx.Err() != nil && code == 0 {
		code = 130
	}

	stop()
	os.Exit(code)
}
