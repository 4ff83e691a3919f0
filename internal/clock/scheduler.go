package clock

import "time"

// Timer is a cancellable handle returned by Scheduler.AfterFunc.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// function from firing. Stopping an already-fired or already-stopped
	// timer is a no-op.
	Stop() bool
}

// Scheduler creates cancellable one-shot timers and reports the current time.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time

	// AfterFunc runs fn after d elapses, on an unspecified goroutine.
	AfterFunc(d time.Duration, fn func()) Timer
}

// System is the production Scheduler backed by the runtime timers.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() bool { return s.t.Stop() }
