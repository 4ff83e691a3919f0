// Package queue buffers outbound envelopes that could not be written
// immediately.
//
// The queue is a bounded FIFO with a drop-oldest overflow policy. Entries are
// drained in insertion order on every transition into the connected state;
// entries that are too old or have failed too many sends are dropped with a
// warning instead of retried forever.
package queue
