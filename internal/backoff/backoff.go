// Package backoff computes reconnect delays for the gateway client.
package backoff

import "time"

// Policy describes an exponential backoff schedule with a cap and a bounded
// attempt budget. The zero value is unusable; construct with explicit fields
// or use Default.
type Policy struct {
	// Base is the delay before the first reconnect attempt.
	Base time.Duration

	// Max caps the computed delay.
	Max time.Duration

	// MaxAttempts is the attempt budget. Attempts beyond it are exhausted
	// and the client moves to the failed state.
	MaxAttempts int
}

// Default returns the production schedule: 1s, 2s, 4s, ... capped at 30s,
// giving up after 5 attempts.
func Default() Policy {
	return Policy{
		Base:        time.Second,
		Max:         30 * time.Second,
		MaxAttempts: 5,
	}
}

// Delay returns the wait before the given attempt (1-based):
// min(Base * 2^(attempt-1), Max). Attempts below 1 are treated as 1.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := p.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.Max || d <= 0 { // <= 0 guards shift overflow
			return p.Max
		}
	}

	if d > p.Max {
		return p.Max
	}
	return d
}

// Exhausted reports whether the given attempt exceeds the budget.
func (p Policy) Exhausted(attempt int) bool {
	return attempt > p.MaxAttempts
}
