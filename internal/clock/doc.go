// Package clock centralizes timer creation behind a cancellable Scheduler.
//
// Every timing-dependent component (heartbeat, reconnect backoff, request
// deadlines) creates timers through one Scheduler so that state transitions
// can retire them through a single abstraction. Tests substitute the Fake
// scheduler and advance virtual time deterministically instead of sleeping.
package clock
