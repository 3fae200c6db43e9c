package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"dcmstream/internal/cli"
	"dcmstream/internal/pairs"
	"dcmstream/internal/stream"
	"dcmstream/internal/writers"
)

// writeTree lays out a data root with n matched pairs in one study.
func writeTree(t *testing.T, n int) string {
	t.Helper()
	root := t.TempDir()
	dcm := filepath.Join(root, "dicoms", "SCD01")
	ctr := filepath.Join(root, "contourfiles", "SC-HF-I-1", "i-contours")
	for _, d := range []string{dcm, ctr} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	body := "patient_id,original_id\nSCD01,SC-HF-I-1\n"
	if err := os.WriteFile(filepath.Join(root, "link.csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		name := string(rune('0' + i))
		if err := os.WriteFile(filepath.Join(dcm, name+".dcm"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
		ctrName := "IM-0001-000" + name + "-icontour-manual.txt"
		if err := os.WriteFile(filepath.Join(ctr, ctrName), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRunStubText(t *testing.T) {
	root := writeTree(t, 3)
	var out, errBuf bytes.Buffer
	code := Run([]string{"--data", root, "--batch-size", "3", "--stub", "--seed", "7"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, errBuf.String())
	}
	got := out.String()
	if !strings.Contains(got, "batch 0: 3 samples") {
		t.Errorf("missing batch line in %q", got)
	}
	for _, want := range []string{"1.dcm", "2.dcm", "3.dcm", "icontour-manual.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("stub output should list %s, got %q", want, got)
		}
	}
}

func TestRunStubEnv(t *testing.T) {
	root := writeTree(t, 2)
	t.Setenv(cli.StubEnv, "1")
	var out, errBuf bytes.Buffer
	code := Run([]string{"--data", root, "--batch-size", "2"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), ".dcm") {
		t.Errorf("env var should force the pass-through loader, got %q", out.String())
	}
}

func TestRunJSONOutput(t *testing.T) {
	root := writeTree(t, 4)
	var out bytes.Buffer
	code := Run([]string{"--data", root, "--batch-size", "2", "--stub", "--output", "json", "--quiet"}, &out, io.Discard)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 JSONL records, got %d: %q", len(lines), out.String())
	}
	var rec writers.BatchRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.RunID == "" || rec.Samples != 2 || len(rec.Images) != 2 {
		t.Errorf("bad record %+v", rec)
	}
}

func TestRunPartialBatchDropped(t *testing.T) {
	root := writeTree(t, 5)
	var out bytes.Buffer
	code := Run([]string{"--data", root, "--batch-size", "2", "--stub", "--quiet"}, &out, io.Discard)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.Count(out.String(), "batch ") != 2 {
		t.Errorf("want 2 full batches, trailing partial dropped; got %q", out.String())
	}
}

func TestRunNoPairs(t *testing.T) {
	root := writeTree(t, 0)
	var out, errBuf bytes.Buffer
	code := Run([]string{"--data", root, "--stub"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("zero pairs is a normal empty stream, got exit %d", code)
	}
	if strings.Contains(out.String(), "batch") {
		t.Errorf("expected no batches, got %q", out.String())
	}
}

func TestRunMissingManifest(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := Run([]string{"--data", t.TempDir(), "--stub"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("missing manifest should be a setup error (2), got %d", code)
	}
	if errBuf.Len() == 0 {
		t.Error("setup error should be reported on stderr")
	}
}

func TestRunBadFlags(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := Run([]string{"--batch-size", "4"}, &out, &errBuf); code != 2 {
		t.Fatalf("want usage error 2, got %d", code)
	}
}

func TestRunVersion(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := Run([]string{"--version"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "dcmstream version") {
		t.Errorf("got %q", out.String())
	}
}

// stubBatches fills a channel with n single-sample batches and closes it.
func stubBatches(n int) <-chan stream.Batch[pairs.FilePair] {
	ch := make(chan stream.Batch[pairs.FilePair], 4)
	go func() {
		defer close(ch)
		for i := 0; i < n; i++ {
			ch <- stream.Batch[pairs.FilePair]{Samples: []pairs.FilePair{
				{ImagePath: "1.dcm", ContourPath: "IM-0001-0001-icontour-manual.txt"},
			}}
		}
	}()
	return ch
}

// consumeJSON runs consume against the given output writer and fails the
// test if it wedges instead of returning an exit code.
func consumeJSON(t *testing.T, out io.Writer) int {
	t.Helper()
	opts := cli.Options{Output: "json", QueueDepth: 2, Quiet: true}
	outw := bufio.NewWriterSize(out, 16) // tiny buffer so records reach the writer early
	done := make(chan int, 1)
	go func() {
		done <- consume(context.Background(), opts, outw, io.Discard, stubBatches(64), describeStub)
	}()
	select {
	case code := <-done:
		return code
	case <-time.After(3 * time.Second):
		t.Fatal("consume blocked after the JSONL writer stopped draining")
		return -1
	}
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestConsumeJSONWriterFailure(t *testing.T) {
	if code := consumeJSON(t, failWriter{err: errors.New("disk full")}); code != 3 {
		t.Fatalf("write error should exit 3, got %d", code)
	}
}

func TestConsumeJSONBrokenPipe(t *testing.T) {
	if code := consumeJSON(t, failWriter{err: syscall.EPIPE}); code != 0 {
		t.Fatalf("downstream closing the pipe is a normal exit, got %d", code)
	}
}

func TestRunCancelled(t *testing.T) {
	root := writeTree(t, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := RunContext(ctx, []string{"--data", root, "--batch-size", "1", "--stub", "--quiet"}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("want 130 on cancelled context, got %d", code)
	}
}
