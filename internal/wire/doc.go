// Package wire defines the envelope format exchanged with the realtime
// gateway.
//
// Every frame on the wire is a single JSON envelope:
//
//	{ "id": "...", "type": "...", "timestamp": 1712345678901, "data": {...} }
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch
//   - IDs: UUID strings, present only when the sender expects a response
//   - Data: opaque payload, interpreted by the application layer
package wire
