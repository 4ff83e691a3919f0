package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeHeartbeat is the envelope type for periodic keep-alive frames.
const TypeHeartbeat = "heartbeat"

// Envelope is the unit of communication with the gateway. Immutable after
// creation.
type Envelope struct {
	// ID correlates a request to its response. Required when a response is
	// expected, otherwise omitted.
	ID string `json:"id,omitempty"`

	// Type tags the payload (e.g. "chat_turn", "heartbeat").
	Type string `json:"type"`

	// Timestamp is the creation time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`

	// Data is the opaque application payload.
	Data json.RawMessage `json:"data,omitempty"`
}

// New creates an envelope of the given type carrying payload. A nil payload
// produces an envelope with no data field.
func New(typ string, payload any) (Envelope, error) {
	env := Envelope{
		Type:      typ,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal payload: %w", err)
		}
		env.Data = data
	}

	return env, nil
}

// NewRequest creates an envelope with a freshly minted correlation ID.
func NewRequest(typ string, payload any) (Envelope, error) {
	env, err := New(typ, payload)
	if err != nil {
		return Envelope{}, err
	}
	env.ID = uuid.NewString()
	return env, nil
}

// Heartbeat creates a keep-alive envelope.
func Heartbeat() Envelope {
	return Envelope{
		Type:      TypeHeartbeat,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode serializes the envelope for the wire.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a wire frame into an envelope. Frames that are not valid
// JSON or lack a type tag return a *ProtocolError.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, &ProtocolError{Size: len(data), Reason: "invalid json", Err: err}
	}

	if env.Type == "" {
		return Envelope{}, &ProtocolError{Size: len(data), Reason: "missing type"}
	}

	return env, nil
}

// ProtocolError reports an inbound frame that could not be decoded into an
// envelope. Malformed frames are dropped and logged, never propagated.
type ProtocolError struct {
	Size   int    // frame size in bytes
	Reason string // short description
	Err    error  // underlying decode error, if any
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s (%d bytes): %v", e.Reason, e.Size, e.Err)
	}
	return fmt.Sprintf("protocol error: %s (%d bytes)", e.Reason, e.Size)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
