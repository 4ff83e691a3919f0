package queue

import (
	"log/slog"
	"sync"
	"time"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/clock"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

// MaxSendRetries is the number of failed drain attempts after which an entry
// is dropped.
const MaxSendRetries = 3

// Item is a queued outbound envelope.
type Item struct {
	Envelope   wire.Envelope
	EnqueuedAt time.Time
	Retries    int
}

// Queue is a bounded FIFO of outbound envelopes. Safe for concurrent use.
type Queue struct {
	clk    clock.Scheduler
	logger *slog.Logger

	maxSize int
	maxAge  time.Duration

	mu    sync.Mutex
	items []Item
}

// New creates a queue holding at most maxSize entries, dropping entries older
// than maxAge at drain time.
func New(maxSize int, maxAge time.Duration, clk clock.Scheduler, logger *slog.Logger) *Queue {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		clk:     clk,
		logger:  logger,
		maxSize: maxSize,
		maxAge:  maxAge,
	}
}

// Push appends an envelope. When the queue is full the oldest entry is
// evicted first; the eviction is advisory (logged), not an error.
func (q *Queue) Push(env wire.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.maxSize {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.logger.Warn("queue overflow, evicting oldest message",
			"type", evicted.Envelope.Type,
			"id", evicted.Envelope.ID,
			"queued_for", q.clk.Now().Sub(evicted.EnqueuedAt),
		)
	}

	q.items = append(q.items, Item{
		Envelope:   env,
		EnqueuedAt: q.clk.Now(),
	})
}

// Drain flushes queued envelopes in insertion order using send. Entries older
// than the age bound or past the retry bound are dropped with a warning. On
// the first send failure the failed entry is retained at the head (with its
// retry count bumped) and draining stops, preserving FIFO order for the next
// drain. Returns the number of envelopes successfully sent.
func (q *Queue) Drain(send func(wire.Envelope) error) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clk.Now()
	sent := 0

	for len(q.items) > 0 {
		item := q.items[0]

		if q.maxAge > 0 && now.Sub(item.EnqueuedAt) > q.maxAge {
			q.items = q.items[1:]
			q.logger.Warn("dropping expired queued message",
				"type", item.Envelope.Type,
				"id", item.Envelope.ID,
				"age", now.Sub(item.EnqueuedAt),
			)
			continue
		}

		if item.Retries >= MaxSendRetries {
			q.items = q.items[1:]
			q.logger.Warn("dropping queued message after repeated send failures",
				"type", item.Envelope.Type,
				"id", item.Envelope.ID,
				"retries", item.Retries,
			)
			continue
		}

		if err := send(item.Envelope); err != nil {
			q.items[0].Retries++
			q.logger.Warn("drain interrupted by send failure",
				"type", item.Envelope.Type,
				"id", item.Envelope.ID,
				"retries", q.items[0].Retries,
				"error", err,
			)
			break
		}

		q.items = q.items[1:]
		sent++
	}

	return sent
}

// Len returns the number of queued envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the queued entries in order, for inspection.
func (q *Queue) Snapshot() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}
