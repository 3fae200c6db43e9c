package cmdutil

import (
	"fmt"
	"io"
)

// Logf prints one diagnostic progress line unless quiet is set.
func Logf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet || dst == nil {
		return
	}
	_, _ = fmt.Fprintf(dst, format+"\n", a...)
}

// Warnf prints a WARN-prefixed line unless quiet is set.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet || dst == nil {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}
