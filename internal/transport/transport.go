package transport

import (
	"context"
	"errors"
	"time"
)

// Close codes, mirroring RFC 6455.
const (
	// CodeNormal indicates a clean, intentional shutdown. The client never
	// reconnects after it.
	CodeNormal = 1000

	// CodeAbnormal indicates the connection died without a close frame.
	CodeAbnormal = 1006
)

// ErrConnClosed is returned by Send after the connection has died or been
// closed.
var ErrConnClosed = errors.New("transport connection closed")

// Message is an inbound frame with its local receive time.
type Message struct {
	Data       []byte
	ReceivedAt time.Time
}

// CloseInfo describes how a connection ended.
type CloseInfo struct {
	// Code is the close code (CodeNormal for clean shutdown).
	Code int

	// Reason is the optional close reason text.
	Reason string

	// Err is the underlying failure for abnormal terminations, nil for
	// clean closes.
	Err error
}

// Clean reports whether the close was a normal closure.
func (c CloseInfo) Clean() bool { return c.Code == CodeNormal }

// Conn is an established duplex, message-oriented connection.
type Conn interface {
	// Send writes one frame. It fails once the connection is closed or
	// broken.
	Send(data []byte) error

	// Close shuts the connection down with the given close code. Idempotent.
	Close(code int, reason string) error

	// Messages delivers inbound frames until the connection dies.
	Messages() <-chan Message

	// Done delivers exactly one CloseInfo when the connection dies, for any
	// reason, local or remote.
	Done() <-chan CloseInfo
}

// Dialer opens connections to a target.
type Dialer interface {
	Dial(ctx context.Context, target string) (Conn, error)
}
