// Package writers emits batch manifests on the CLI's output stream.
package writers

import (
	"bufio"
	"encoding/json"
	"io"
)

// BatchRecord is the JSONL view of one received batch. Rows/Cols are set
// for loaded samples; Images/Contours carry the raw paths in pass-through
// mode.
type BatchRecord struct {
	RunID    string   `json:"run_id"`
	Batch    int      `json:"batch"`
	Samples  int      `json:"samples"`
	Rows     int      `json:"rows,omitempty"`
	Cols     int      `json:"cols,omitempty"`
	Images   []string `json:"images,omitempty"`
	Contours []string `json:"contours,omitempty"`
}

// StartBatchJSONL spins up a writer goroutine that encodes each record as
// one JSON line. Closing the returned channel flushes and reports the
// first write error (broken pipes are suppressed).
func StartBatchJSONL(out io.Writer, bufSize int) (chan<- BatchRecord, <-chan error) {
	if bufSize <= 0 {
		bufSize = 16
	}
	in := make(chan BatchRecord, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := bufio.NewWriter(out)
		enc := json.NewEncoder(bw)
		for rec := range in {
			if err := enc.Encode(rec); err != nil {
				done <- err
				return
			}
		}
		if err := bw.Flush(); err != nil && !IsBrokenPipe(err) {
			done <- err
			return
		}
		done <- nil
	}()

	return in, done
}
