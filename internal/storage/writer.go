package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/config"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

const insertEventSQL = `
INSERT INTO transcript_events (session_id, envelope_id, event_type, event_ts, received_at, payload)
VALUES ($1, $2, $3, $4, $5, $6)`

// Row is one received envelope bound for the transcript_events table.
type Row struct {
	SessionID  string
	EnvelopeID string
	Type       string
	EventTS    int64 // envelope timestamp, ms since epoch
	ReceivedAt int64 // local receive time, ms since epoch
	Payload    []byte
}

// RowFromEnvelope converts a received envelope into a transcript row.
func RowFromEnvelope(sessionID string, env wire.Envelope, receivedAt time.Time) Row {
	return Row{
		SessionID:  sessionID,
		EnvelopeID: env.ID,
		Type:       env.Type,
		EventTS:    env.Timestamp,
		ReceivedAt: receivedAt.UnixMilli(),
		Payload:    env.Data,
	}
}

// sink flushes accumulated rows. Abstracted so the batching logic is
// testable without a database.
type sink interface {
	insert(ctx context.Context, rows []Row) error
}

// pgSink inserts rows with a single pgx batch per flush.
type pgSink struct {
	pool *pgxpool.Pool
}

func (s pgSink) insert(ctx context.Context, rows []Row) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertEventSQL,
			r.SessionID, r.EnvelopeID, r.Type, r.EventTS, r.ReceivedAt, r.Payload)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert transcript event: %w", err)
		}
	}
	return nil
}

// EnvelopeWriter batches transcript rows and flushes them when the batch
// fills or the flush interval elapses.
type EnvelopeWriter struct {
	cfg    config.RecorderConfig
	logger *slog.Logger
	sink   sink
	in     chan Row
}

// NewEnvelopeWriter creates a writer backed by the given pool.
func NewEnvelopeWriter(pool *pgxpool.Pool, cfg config.RecorderConfig, logger *slog.Logger) *EnvelopeWriter {
	return newWriterWithSink(pgSink{pool: pool}, cfg, logger)
}

func newWriterWithSink(s sink, cfg config.RecorderConfig, logger *slog.Logger) *EnvelopeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvelopeWriter{
		cfg:    cfg,
		logger: logger,
		sink:   s,
		in:     make(chan Row, cfg.BufferSize),
	}
}

// Write enqueues a row without blocking; rows are dropped with a warning
// when the buffer is full.
func (w *EnvelopeWriter) Write(row Row) {
	select {
	case w.in <- row:
	default:
		w.logger.Warn("writer buffer full, dropping row",
			"type", row.Type, "id", row.EnvelopeID)
	}
}

// Run accumulates and flushes rows until ctx is cancelled, then flushes the
// remainder and returns.
func (w *EnvelopeWriter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Row, 0, w.cfg.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Detached context so a shutdown flush still completes.
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := w.sink.insert(flushCtx, batch); err != nil {
			w.logger.Error("flush failed, dropping batch", "rows", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			w.drainInto(&batch)
			flush()
			return ctx.Err()

		case row := <-w.in:
			batch = append(batch, row)
			if len(batch) >= w.cfg.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// drainInto moves whatever is buffered in the channel into batch.
func (w *EnvelopeWriter) drainInto(batch *[]Row) {
	for {
		select {
		case row := <-w.in:
			*batch = append(*batch, row)
		default:
			return
		}
	}
}
