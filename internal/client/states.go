package client

// State is the connection lifecycle state. Exactly one is active at a time.
type State int

const (
	// StateDisconnected is the initial and post-shutdown state.
	StateDisconnected State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means the transport is open and usable.
	StateConnected

	// StateDisconnecting is the transient state during a manual Disconnect.
	StateDisconnecting

	// StateReconnecting means a backoff timer is pending after an
	// unexpected close.
	StateReconnecting

	// StateFailed is terminal: the reconnect budget is exhausted and no
	// further automatic action happens until Connect is called again.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
