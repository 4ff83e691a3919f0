// Package storage persists received envelopes for the transcript recorder.
//
// It provides the Postgres connection pool and a batching writer that
// accumulates rows and flushes them with a single pgx batch, either when the
// batch is full or on a flush interval.
package storage
