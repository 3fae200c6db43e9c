package cmdutil

import (
	"bytes"
	"testing"
)

func TestLogfQuiet(t *testing.T) {
	var buf bytes.Buffer
	Logf(&buf, true, "hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("quiet should suppress output, got %q", buf.String())
	}
	Logf(&buf, false, "shown %d", 2)
	if got := buf.String(); got != "shown 2\n" {
		t.Errorf("got %q", got)
	}
}

func TestWarnfPrefix(t *testing.T) {
	var buf bytes.Buffer
	Warnf(&buf, false, "bad file %s", "x.dcm")
	if got := buf.String(); got != "WARN: bad file x.dcm\n" {
		t.Errorf("got %q", got)
	}
}

func TestNilWriter(t *testing.T) {
	// Must not panic.
	Logf(nil, false, "x")
	Warnf(nil, false, "x")
}
