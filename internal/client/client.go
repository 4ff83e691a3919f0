package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/backoff"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/clock"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/pending"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/queue"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/transport"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

// Options configures a Client. Target and Dialer are required; everything
// else has defaults.
type Options struct {
	// Target is the gateway address handed to the dialer.
	Target string

	// Dialer opens transport connections. Production code uses
	// *transport.WebsocketDialer; tests use *transport.FakeDialer.
	Dialer transport.Dialer

	// Clock creates timers. Defaults to the system scheduler.
	Clock clock.Scheduler

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Backoff is the reconnect schedule. Zero value means backoff.Default().
	Backoff backoff.Policy

	// HeartbeatInterval between keep-alive envelopes. Defaults to 30s.
	HeartbeatInterval time.Duration

	// RequestTimeout is the per-request response deadline. Defaults to 10s.
	RequestTimeout time.Duration

	// MaxQueueSize bounds the outbound queue. Defaults to 100.
	MaxQueueSize int

	// MaxQueuedMessageAge drops older queued messages at drain time.
	// Defaults to 60s.
	MaxQueuedMessageAge time.Duration

	// Types is the allow-list of inbound envelope types. Nil accepts all.
	Types *wire.Registry
}

// Stats is a point-in-time snapshot of the client.
type Stats struct {
	State             State
	ReconnectAttempts int
	QueuedMessages    int
	PendingRequests   int
}

// Client is a realtime gateway client. Construct with New; all methods are
// safe for concurrent use.
type Client struct {
	target  string
	dialer  transport.Dialer
	clk     clock.Scheduler
	logger  *slog.Logger
	policy  backoff.Policy
	hbEvery time.Duration
	reqTTL  time.Duration
	types   *wire.Registry

	outbox   *queue.Queue
	pend     *pending.Table
	dispatch *dispatcher

	mu sync.Mutex
	// state, conn, attempts, manual and the timers below are guarded by mu.
	state    State
	conn     transport.Conn
	attempts int
	manual   bool
	// gen is the connection generation. Every transition that retires
	// timers bumps it; timer and read-loop closures re-check their captured
	// generation before acting, so a stale callback is a no-op.
	gen       int
	hbTimer   clock.Timer
	rcTimer   clock.Timer
}

// New creates a disconnected client.
func New(opts Options) (*Client, error) {
	if opts.Target == "" {
		return nil, fmt.Errorf("client: target is required")
	}
	if opts.Dialer == nil {
		return nil, fmt.Errorf("client: dialer is required")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := opts.Backoff
	if policy == (backoff.Policy{}) {
		policy = backoff.Default()
	}
	hbEvery := opts.HeartbeatInterval
	if hbEvery == 0 {
		hbEvery = 30 * time.Second
	}
	reqTTL := opts.RequestTimeout
	if reqTTL == 0 {
		reqTTL = 10 * time.Second
	}
	maxQueue := opts.MaxQueueSize
	if maxQueue == 0 {
		maxQueue = 100
	}
	maxAge := opts.MaxQueuedMessageAge
	if maxAge == 0 {
		maxAge = 60 * time.Second
	}

	return &Client{
		target:   opts.Target,
		dialer:   opts.Dialer,
		clk:      clk,
		logger:   logger,
		policy:   policy,
		hbEvery:  hbEvery,
		reqTTL:   reqTTL,
		types:    opts.Types,
		outbox:   queue.New(maxQueue, maxAge, clk, logger),
		pend:     pending.NewTable(clk, logger),
		dispatch: newDispatcher(),
		state:    StateDisconnected,
	}, nil
}

// Connect opens the connection. It returns nil once the first attempt
// succeeds and the first attempt's error otherwise; in the failure case a
// reconnect is already scheduled, and later automatic attempts never affect
// this call's result. Calling Connect while connecting or connected is a
// no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}

	c.manual = false
	c.attempts = 0
	c.cancelTimersLocked()
	c.gen++
	gen := c.gen
	events := c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.emitAll(events)
	return c.dial(ctx, gen, false)
}

// Disconnect closes the connection, cancels every timer, rejects all pending
// requests, and leaves queued messages in place (they flush on the next
// Connect). Idempotent; it is the single cancellation point.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}

	c.manual = true
	c.gen++
	c.cancelTimersLocked()
	conn := c.conn
	c.conn = nil
	events := c.setStateLocked(StateDisconnecting)
	c.mu.Unlock()

	c.emitAll(events)

	if conn != nil {
		conn.Close(transport.CodeNormal, "client disconnected")
	}
	c.pend.RejectAll(ErrConnectionClosed)

	c.mu.Lock()
	events = nil
	if c.state == StateDisconnecting { // a concurrent Connect may have superseded us
		events = c.setStateLocked(StateDisconnected)
	}
	c.mu.Unlock()

	events = append(events, Event{
		Type:  EventClose,
		Close: transport.CloseInfo{Code: transport.CodeNormal, Reason: "client disconnected"},
	})
	c.emitAll(events)
}

// Send delivers an envelope: written immediately when connected, queued
// otherwise. A failed immediate write falls back to the queue. The only
// error is an envelope that cannot be encoded.
func (c *Client) Send(env wire.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if connected && conn != nil {
		err := conn.Send(data)
		if err == nil {
			return nil
		}
		c.logger.Warn("write failed, queueing message",
			"type", env.Type, "id", env.ID, "error", err)
	}

	c.outbox.Push(env)
	return nil
}

// Request sends an envelope and waits for the response that carries the same
// correlation id. An envelope without an id gets one minted. The wait ends
// on response, on the request deadline (ErrTimeout), on disconnect
// (ErrConnectionClosed), or when ctx is cancelled.
func (c *Client) Request(ctx context.Context, env wire.Envelope) (wire.Envelope, error) {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	done, err := c.pend.Register(env.ID, c.reqTTL)
	if err != nil {
		return wire.Envelope{}, err
	}

	if err := c.Send(env); err != nil {
		c.pend.Reject(env.ID, err)
		<-done
		return wire.Envelope{}, err
	}

	select {
	case res := <-done:
		return res.Envelope, res.Err
	case <-ctx.Done():
		c.pend.Reject(env.ID, ctx.Err())
		res := <-done
		return res.Envelope, res.Err
	}
}

// Subscribe registers a handler for the named event and returns the token
// that removes it.
func (c *Client) Subscribe(ev EventType, h Handler) Token {
	return c.dispatch.subscribe(ev, h)
}

// Unsubscribe removes the subscription identified by tok.
func (c *Client) Unsubscribe(tok Token) {
	c.dispatch.unsubscribe(tok)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	state := c.state
	attempts := c.attempts
	c.mu.Unlock()

	return Stats{
		State:             state,
		ReconnectAttempts: attempts,
		QueuedMessages:    c.outbox.Len(),
		PendingRequests:   c.pend.Len(),
	}
}

// dial performs one connection attempt for generation gen and installs the
// connection on success. On failure it schedules the next reconnect and
// returns the dial error.
func (c *Client) dial(ctx context.Context, gen int, wasReconnect bool) error {
	conn, err := c.dialer.Dial(ctx, c.target)

	c.mu.Lock()
	if c.gen != gen || c.manual || c.state != StateConnecting {
		// A Disconnect (or a newer Connect) superseded this attempt.
		c.mu.Unlock()
		if err == nil {
			conn.Close(transport.CodeNormal, "superseded")
		}
		return ErrConnectionClosed
	}

	if err != nil {
		events, exhausted := c.scheduleReconnectLocked(err)
		c.mu.Unlock()

		c.logger.Warn("connection attempt failed", "target", c.target, "error", err)
		c.emitAll(events)
		if exhausted {
			c.pend.RejectAll(ErrConnectionClosed)
		}
		return err
	}

	c.conn = conn
	c.attempts = 0
	c.gen++
	connGen := c.gen
	events := c.setStateLocked(StateConnected)
	c.scheduleHeartbeatLocked(connGen)
	c.mu.Unlock()

	events = append(events, Event{Type: EventOpen})
	if wasReconnect {
		events = append(events, Event{Type: EventReconnected})
	}
	c.emitAll(events)

	go c.readLoop(conn, connGen)

	sent := c.outbox.Drain(func(env wire.Envelope) error {
		data, err := env.Encode()
		if err != nil {
			return err
		}
		return conn.Send(data)
	})
	if sent > 0 {
		c.logger.Info("flushed queued messages", "count", sent)
	}

	return nil
}

// readLoop pumps one connection's inbound traffic until it dies.
func (c *Client) readLoop(conn transport.Conn, gen int) {
	for {
		select {
		case msg := <-conn.Messages():
			c.handleMessage(msg)
		case info := <-conn.Done():
			c.handleClose(gen, info)
			return
		}
	}
}

// handleMessage decodes an inbound frame and routes it: pending request
// first, then the message subscribers. Malformed or unknown frames are
// dropped with a log, never propagated.
func (c *Client) handleMessage(msg transport.Message) {
	env, err := wire.Decode(msg.Data)
	if err != nil {
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	if env.ID != "" && c.pend.Resolve(env.ID, env) {
		return
	}

	if env.Type == wire.TypeHeartbeat {
		c.logger.Debug("heartbeat from server")
		return
	}

	if !c.types.Known(env.Type) {
		c.logger.Warn("dropping envelope of unknown type", "type", env.Type, "id", env.ID)
		return
	}

	c.dispatch.emit(Event{Type: EventMessage, Envelope: env})
}

// handleClose reacts to a connection's death. Clean and manual closes are
// terminal; anything else schedules a reconnect.
func (c *Client) handleClose(gen int, info transport.CloseInfo) {
	c.mu.Lock()
	if c.gen != gen {
		// This connection was already retired by Disconnect or a newer
		// Connect; its close is old news.
		c.mu.Unlock()
		return
	}

	c.conn = nil
	c.cancelTimersLocked()

	var events []Event
	events = append(events, Event{Type: EventClose, Close: info})
	if info.Err != nil {
		events = append(events, Event{Type: EventError, Err: info.Err})
	}

	rejectPending := false
	exhausted := false
	if c.manual || info.Clean() {
		c.gen++
		events = append(events, c.setStateLocked(StateDisconnected)...)
		rejectPending = true
	} else {
		var more []Event
		more, exhausted = c.scheduleReconnectLocked(info.Err)
		events = append(events, more...)
	}
	c.mu.Unlock()

	c.logger.Info("connection closed",
		"code", info.Code, "reason", info.Reason, "error", info.Err)
	c.emitAll(events)

	if rejectPending || exhausted {
		c.pend.RejectAll(ErrConnectionClosed)
	}
}

// scheduleReconnectLocked books the next reconnect attempt, or moves to the
// failed state when the budget is spent. Caller holds mu and emits the
// returned events after unlocking; when exhausted is true the caller also
// rejects all pending requests.
func (c *Client) scheduleReconnectLocked(cause error) (events []Event, exhausted bool) {
	c.attempts++
	attempt := c.attempts

	if c.policy.Exhausted(attempt) {
		c.gen++
		events = c.setStateLocked(StateFailed)
		events = append(events, Event{Type: EventError, Err: ErrReconnectExhausted})
		c.logger.Error("reconnect attempts exhausted",
			"attempts", attempt-1, "cause", cause)
		return events, true
	}

	delay := c.policy.Delay(attempt)
	events = c.setStateLocked(StateReconnecting)
	events = append(events, Event{Type: EventReconnecting, Attempt: attempt})

	gen := c.gen
	c.rcTimer = c.clk.AfterFunc(delay, func() { c.reconnect(gen) })
	c.logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay)

	return events, false
}

// reconnect fires when a backoff timer elapses.
func (c *Client) reconnect(gen int) {
	c.mu.Lock()
	if c.gen != gen || c.manual || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	events := c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.emitAll(events)
	c.dial(context.Background(), gen, true)
}

// scheduleHeartbeatLocked books the next keep-alive for connection
// generation gen. Caller holds mu.
func (c *Client) scheduleHeartbeatLocked(gen int) {
	c.hbTimer = c.clk.AfterFunc(c.hbEvery, func() { c.heartbeat(gen) })
}

// heartbeat sends one keep-alive and reschedules. Send failure is logged,
// not fatal: if the connection is actually dead its close event drives the
// reconnect.
func (c *Client) heartbeat(gen int) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.scheduleHeartbeatLocked(gen)
	c.mu.Unlock()

	data, err := wire.Heartbeat().Encode()
	if err != nil {
		return
	}
	if err := conn.Send(data); err != nil {
		c.logger.Warn("heartbeat send failed", "error", err)
	}
}

// cancelTimersLocked retires the heartbeat and reconnect timers. Caller
// holds mu.
func (c *Client) cancelTimersLocked() {
	if c.hbTimer != nil {
		c.hbTimer.Stop()
		c.hbTimer = nil
	}
	if c.rcTimer != nil {
		c.rcTimer.Stop()
		c.rcTimer = nil
	}
}

// setStateLocked records a transition and returns the stateChanged event for
// the caller to emit after unlocking. Caller holds mu.
func (c *Client) setStateLocked(to State) []Event {
	if c.state == to {
		return nil
	}

	c.logger.Debug("state transition", "from", c.state.String(), "to", to.String())
	c.state = to
	return []Event{{Type: EventStateChanged, State: to}}
}

func (c *Client) emitAll(events []Event) {
	for _, e := range events {
		c.dispatch.emit(e)
	}
}
