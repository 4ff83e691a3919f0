package pending

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/clock"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

// ErrTimeout is the rejection delivered when a request deadline elapses with
// no matching response. Check with errors.Is().
var ErrTimeout = errors.New("request timed out")

// ErrDuplicateID is returned by Register when the id is already pending.
var ErrDuplicateID = errors.New("correlation id already pending")

// Result is the outcome of a pending request: a response envelope or a
// rejection, never both.
type Result struct {
	Envelope wire.Envelope
	Err      error
}

type entry struct {
	id    string
	done  chan Result
	timer clock.Timer
}

// Table tracks outstanding requests by correlation id. Safe for concurrent
// use.
type Table struct {
	clk    clock.Scheduler
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewTable creates an empty correlation table.
func NewTable(clk clock.Scheduler, logger *slog.Logger) *Table {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Table{
		clk:     clk,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds a pending request with deadline now+timeout and returns the
// channel its result will be delivered on. The channel receives exactly one
// Result. Registering an id that is already pending fails.
func (t *Table) Register(id string, timeout time.Duration) (<-chan Result, error) {
	if id == "" {
		return nil, fmt.Errorf("register pending request: empty id")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; exists {
		return nil, fmt.Errorf("register pending request %q: %w", id, ErrDuplicateID)
	}

	e := &entry{
		id:   id,
		done: make(chan Result, 1),
	}
	e.timer = t.clk.AfterFunc(timeout, func() {
		if t.Reject(id, ErrTimeout) {
			t.logger.Warn("pending request timed out", "id", id, "timeout", timeout)
		}
	})
	t.entries[id] = e

	return e.done, nil
}

// Resolve completes the request with a response envelope. Reports whether an
// entry with that id was pending.
func (t *Table) Resolve(id string, env wire.Envelope) bool {
	e := t.remove(id)
	if e == nil {
		return false
	}
	e.done <- Result{Envelope: env}
	return true
}

// Reject fails the request with err. Reports whether an entry with that id
// was pending.
func (t *Table) Reject(id string, err error) bool {
	e := t.remove(id)
	if e == nil {
		return false
	}
	e.done <- Result{Err: err}
	return true
}

// RejectAll fails every outstanding request with err. Used when the client
// disconnects.
func (t *Table) RejectAll(err error) {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[string]*entry)
	t.mu.Unlock()

	for _, e := range entries {
		e.timer.Stop()
		e.done <- Result{Err: err}
	}
}

// Len returns the number of outstanding requests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// remove detaches the entry and cancels its deadline timer. The removal
// happens before anyone is signalled, which is what makes completion
// at-most-once.
func (t *Table) remove(id string) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return nil
	}
	delete(t.entries, id)
	e.timer.Stop()
	return e
}
