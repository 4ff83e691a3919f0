package client

import (
	"errors"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/pending"
)

// Sentinel errors surfaced to callers - check with errors.Is().
var (
	// ErrConnectionClosed rejects outstanding requests when the client is
	// disconnected or the connection is torn down for good.
	ErrConnectionClosed = errors.New("client disconnected")

	// ErrReconnectExhausted is surfaced once, when the reconnect budget
	// runs out and the client enters the failed state.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// ErrTimeout rejects a request whose deadline elapsed with no matching
	// response.
	ErrTimeout = pending.ErrTimeout
)
