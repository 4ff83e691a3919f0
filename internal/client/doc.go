// Package client implements the realtime gateway client: a persistent duplex
// connection with automatic reconnection, heartbeats, outbound queueing, and
// request/response correlation.
//
// The client owns a single transport connection at a time and drives it
// through an explicit state machine (Disconnected, Connecting, Connected,
// Disconnecting, Reconnecting, Failed). Outbound envelopes sent while not
// connected are queued and flushed in FIFO order on the next connect.
// Requests register a correlation id with a deadline; the matching inbound
// envelope resolves the caller, a missed deadline rejects it.
//
// All timers (heartbeat, reconnect backoff, request deadlines) are created
// through one clock.Scheduler and owned by the connection generation that
// created them; Disconnect is the single cancellation point.
package client
