package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/auth"
)

// WebsocketDialer dials gateway connections over WebSocket.
type WebsocketDialer struct {
	// Subprotocols requested during the handshake.
	Subprotocols []string

	// Tokens, when set, appends a credential to the dial target.
	Tokens auth.TokenSource

	// HandshakeTimeout bounds the dial. Defaults to 10s.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each Send. Defaults to 5s.
	WriteTimeout time.Duration

	// BufferSize is the inbound message channel capacity. Defaults to 256.
	BufferSize int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Dial opens a WebSocket connection to target and starts its read loop.
func (d *WebsocketDialer) Dial(ctx context.Context, target string) (Conn, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	target, err := auth.Authorize(ctx, target, d.Tokens)
	if err != nil {
		return nil, fmt.Errorf("authorize dial target: %w", err)
	}

	handshake := d.HandshakeTimeout
	if handshake == 0 {
		handshake = 10 * time.Second
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshake,
		Subprotocols:     d.Subprotocols,
	}

	ws, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, err
	}

	writeTimeout := d.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}
	bufSize := d.BufferSize
	if bufSize == 0 {
		bufSize = 256
	}

	c := &wsConn{
		ws:           ws,
		logger:       logger,
		writeTimeout: writeTimeout,
		messages:     make(chan Message, bufSize),
		done:         make(chan CloseInfo, 1),
	}

	go c.readLoop()

	logger.Debug("websocket connected", "target", target)
	return c, nil
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
type wsConn struct {
	ws           *websocket.Conn
	logger       *slog.Logger
	writeTimeout time.Duration

	messages chan Message
	done     chan CloseInfo
	doneOnce sync.Once

	// Write serialization
	writeMu sync.Mutex

	mu        sync.Mutex
	closed    bool
	closeInfo CloseInfo
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnClosed
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.closeInfo = CloseInfo{Code: code, Reason: reason}
	c.mu.Unlock()

	c.writeMu.Lock()
	c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	return c.ws.Close()
}

func (c *wsConn) Messages() <-chan Message { return c.messages }

func (c *wsConn) Done() <-chan CloseInfo { return c.done }

// readLoop pumps inbound frames until the connection dies, then reports the
// close exactly once.
func (c *wsConn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			c.finish(err)
			return
		}

		select {
		case c.messages <- Message{Data: data, ReceivedAt: receivedAt}:
		default:
			c.logger.Warn("inbound buffer full, dropping frame", "bytes", len(data))
		}
	}
}

// finish translates the read error into a CloseInfo and delivers it.
func (c *wsConn) finish(err error) {
	c.mu.Lock()
	info := c.closeInfo
	locallyClosed := c.closed
	c.closed = true
	c.mu.Unlock()

	if !locallyClosed {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			info = CloseInfo{Code: ce.Code, Reason: ce.Text}
			if ce.Code != websocket.CloseNormalClosure {
				info.Err = err
			}
		} else {
			info = CloseInfo{Code: CodeAbnormal, Err: err}
		}
		c.ws.Close()
	}

	c.doneOnce.Do(func() {
		c.done <- info
	})
}
