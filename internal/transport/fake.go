package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeDialer is a deterministic in-memory Dialer for tests. Each Dial hands
// out a new FakeConn; scripted failures consume the failure budget first.
type FakeDialer struct {
	mu       sync.Mutex
	dials    int
	failures int
	failErr  error
	conns    []*FakeConn
}

// NewFakeDialer creates a dialer whose dials all succeed.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{failErr: fmt.Errorf("dial refused")}
}

// FailNext makes the next n dials fail with err (a default error when nil).
func (d *FakeDialer) FailNext(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures = n
	if err != nil {
		d.failErr = err
	}
}

func (d *FakeDialer) Dial(ctx context.Context, target string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.failures > 0 {
		d.failures--
		return nil, d.failErr
	}

	c := NewFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

// Dials returns how many times Dial was called, including failures.
func (d *FakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// LastConn returns the most recently established connection, or nil.
func (d *FakeDialer) LastConn() *FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// ConnCount returns the number of successfully established connections.
func (d *FakeDialer) ConnCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// FakeConn is an in-memory Conn controlled by the test: Inject simulates
// server frames, CloseWith simulates the server closing the connection.
type FakeConn struct {
	messages chan Message
	done     chan CloseInfo
	doneOnce sync.Once

	mu      sync.Mutex
	sent    [][]byte
	sendErr error
	closed  bool
}

// NewFakeConn creates an open fake connection.
func NewFakeConn() *FakeConn {
	return &FakeConn{
		messages: make(chan Message, 256),
		done:     make(chan CloseInfo, 1),
	}
}

func (c *FakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	c.sent = append(c.sent, buf)
	return nil
}

func (c *FakeConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.doneOnce.Do(func() {
		c.done <- CloseInfo{Code: code, Reason: reason}
	})
	return nil
}

func (c *FakeConn) Messages() <-chan Message { return c.messages }

func (c *FakeConn) Done() <-chan CloseInfo { return c.done }

// SetSendError makes subsequent Sends fail with err (nil restores success).
func (c *FakeConn) SetSendError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Inject delivers a frame as if the server had sent it.
func (c *FakeConn) Inject(data []byte) {
	c.messages <- Message{Data: data, ReceivedAt: time.Now()}
}

// CloseWith simulates the server closing the connection with the given code.
func (c *FakeConn) CloseWith(code int, reason string, err error) {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.doneOnce.Do(func() {
		c.done <- CloseInfo{Code: code, Reason: reason, Err: err}
	})
}

// Sent returns copies of all frames written to the connection, in order.
func (c *FakeConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}
