// Package stream assembles loaded samples into fixed-size batches and
// hands them to the consumer over one bounded channel.
//
// Exactly one producer goroutine runs per invocation. The channel is the
// only surface shared with the consumer; closing it is the end-of-stream
// signal and happens exactly once, after every pair has been attempted.
// A pair that fails or panics during loading is logged and skipped; it
// never terminates the stream.
package stream
